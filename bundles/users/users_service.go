package users

import (
	"context"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/generics"
	"github.com/IamWorkDev/yevhen-k-laravel/permissions"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// Service is the main struct exported by this Users Service.
type Service struct {
	Permissions *permissions.Permissions
}

// CreateUser creates a new User for the given identity (usually got from the
// JWT). Returns a UserResponse.
func (us *Service) CreateUser(ctx context.Context, tx *gorm.DB, identity string,
	in *CreateUserInput) (*UserResponse, *gz.ErrMsg) {
	// Sanity check: Make sure that the identity (JWT) is not already used by an active
	// user.
	aUser, em := ByIdentity(tx, identity, false)
	if em != nil && em.ErrCode != gz.ErrorAuthNoUser {
		return nil, em
	}
	if aUser != nil {
		return nil, gz.NewErrorMessage(gz.ErrorResourceExists)
	}
	// Sanity check: Make sure that the claimed username was not already used,
	// even with removed users.
	taken, em := ByUsername(tx, in.Username, true)
	if em != nil && em.ErrCode != gz.ErrorUserUnknown {
		return nil, em
	}
	if taken != nil {
		return nil, gz.NewErrorMessageWithArgs(gz.ErrorResourceExists, nil, []string{in.Username})
	}

	u := User{
		Identity: &identity,
		Username: &in.Username,
		Name:     in.Name,
		Email:    &in.Email,
	}
	if err := tx.Create(&u).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}

	gz.LoggerFromContext(ctx).Info("A new user has been created. Username=", *u.Username,
		" Email=", *u.Email)

	ur := us.CreateUserResponse(tx, &u, &u)
	return &ur, nil
}

// GetUser returns the profile of the user with the given id.
// The requestor can be nil.
func (us *Service) GetUser(tx *gorm.DB, id uint, requestor *User) (*UserResponse, *gz.ErrMsg) {
	user, em := ByID(tx, id)
	if em != nil {
		return nil, em
	}
	ur := us.CreateUserResponse(tx, user, requestor)
	return &ur, nil
}

// UpdateUser updates an user.
// Fields that can be currently updated: name, email, about and country.
// The reqUser argument is the requesting user. It is used to check if the
// reqUser can perform the operation.
func (us *Service) UpdateUser(ctx context.Context, tx *gorm.DB, id uint,
	uu *UpdateUserInput, reqUser *User) (*UserResponse, *gz.ErrMsg) {

	// Sanity check: make sure the user exists
	user, em := ByID(tx, id)
	if em != nil {
		return nil, em
	}

	// Only the user itself or a system admin can update a profile
	if user.ID != reqUser.ID && !us.isSystemAdmin(reqUser) {
		return nil, generics.NewForbiddenError("cannot update another user profile")
	}

	fields := map[string]interface{}{}
	// Edit the fields, if present.
	if uu.Name != nil {
		fields["name"] = *uu.Name
	}
	if uu.Email != nil {
		fields["email"] = *uu.Email
	}
	if uu.About != nil {
		fields["about"] = *uu.About
	}
	if uu.CountryID != nil {
		fields["country_id"] = *uu.CountryID
	}
	if len(fields) > 0 {
		if err := tx.Model(user).Updates(fields).Error; err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
		}
	}

	gz.LoggerFromContext(ctx).Info("User updated. Username=", *user.Username)

	ur := us.CreateUserResponse(tx, user, reqUser)
	return &ur, nil
}

// SetBan bans or unbans the user with the given id.
func (us *Service) SetBan(ctx context.Context, tx *gorm.DB, id uint, ban bool) (*UserResponse, *gz.ErrMsg) {
	user, em := ByID(tx, id)
	if em != nil {
		return nil, em
	}
	if err := tx.Model(user).Update("is_ban", ban).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	gz.LoggerFromContext(ctx).Info("User ban changed. Username=", *user.Username, " Ban=", ban)
	ur := us.CreateUserResponse(tx, user, nil)
	return &ur, nil
}

// SetRole sets the profile role of the user with the given id. A nil roleID
// clears it. The moderator flag grants or revokes the moderator permissions
// role.
func (us *Service) SetRole(ctx context.Context, tx *gorm.DB, id uint, roleID *uint,
	moderator bool) (*UserResponse, *gz.ErrMsg) {

	user, em := ByID(tx, id)
	if em != nil {
		return nil, em
	}
	var value interface{} = gorm.Expr("NULL")
	if roleID != nil {
		value = *roleID
	}
	if err := tx.Model(user).UpdateColumn("role_id", value).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	user.RoleID = roleID

	role := permissions.Moderator.String()
	isModerator := us.Permissions.HasRoleForUser(*user.Username, role)
	if moderator && !isModerator {
		if _, em := us.Permissions.AddRoleForUser(*user.Username, role); em != nil {
			return nil, em
		}
	} else if !moderator && isModerator {
		if _, em := us.Permissions.RemoveRoleForUser(*user.Username, role); em != nil {
			return nil, em
		}
	}

	gz.LoggerFromContext(ctx).Info("User role changed. Username=", *user.Username,
		" Moderator=", moderator)
	ur := us.CreateUserResponse(tx, user, nil)
	return &ur, nil
}

// UserList returns a list of paginated UserResponses.
func (us *Service) UserList(p *gz.PaginationRequest, tx *gorm.DB,
	reqUser *User) (*UserResponses, *gz.PaginationResult, *gz.ErrMsg) {
	// Get the users
	var list Users

	// Create the DB query
	q := tx.Model(&User{}).Order("rating desc, id")

	pagination, err := gz.PaginateQuery(q, &list, *p)
	if err != nil {
		return nil, nil, gz.NewErrorMessageWithBase(gz.ErrorInvalidPaginationRequest, err)
	}
	if !pagination.PageFound {
		return nil, nil, gz.NewErrorMessage(gz.ErrorPaginationPageNotFound)
	}

	// Create UserReponse results
	responses := UserResponses{}
	for i := range list {
		responses = append(responses, us.CreateUserResponse(tx, &list[i], reqUser))
	}

	return &responses, pagination, nil
}

// CreateUserResponse creates a new UserResponse struct based on the given
// User object.
// The returned UserResponse will also include user private fields if the
// requestor can access those
func (us *Service) CreateUserResponse(tx *gorm.DB, user, requestor *User) UserResponse {
	var response UserResponse

	// Public info
	response.ID = user.ID
	response.Username = *user.Username
	if user.Name != nil {
		response.Name = *user.Name
	}
	if user.About != nil {
		response.About = *user.About
	}
	response.Rating = user.Rating
	response.Points = user.Points
	response.IsBan = user.IsBan

	if requestor == nil {
		return response
	}

	isSystemAdmin := us.isSystemAdmin(requestor)
	isSameUser := user.ID == requestor.ID

	// Set the SysAdmin field only if both cases apply.
	response.SysAdmin = isSystemAdmin && isSameUser

	// Private data is only included for the user itself or a system admin.
	if (isSystemAdmin || isSameUser) && user.Email != nil {
		response.Email = *user.Email
	}

	if !isSameUser {
		ignored, err := Ignores(tx, requestor.ID, user.ID)
		response.Ignored = err == nil && ignored
	}
	return response
}

// Block adds the user with the given id to the block list of user.
func (us *Service) Block(ctx context.Context, tx *gorm.DB, user *User, otherID uint) (*IgnoreUser, *gz.ErrMsg) {
	if user.ID == otherID {
		return nil, generics.NewUnprocessableError(nil, []string{"cannot ignore yourself"})
	}
	if _, em := ByID(tx, otherID); em != nil {
		return nil, em
	}

	var entry IgnoreUser
	err := tx.Where("user_id = ? AND ignored_user_id = ?", user.ID, otherID).First(&entry).Error
	if err == nil {
		// Already ignored
		return &entry, nil
	}
	if !gorm.IsRecordNotFoundError(err) {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}

	entry = IgnoreUser{UserID: user.ID, IgnoredUserID: otherID}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	gz.LoggerFromContext(ctx).Info("User ", user.ID, " ignores user ", otherID)
	return &entry, nil
}

// Unblock removes the user with the given id from the block list of user.
func (us *Service) Unblock(ctx context.Context, tx *gorm.DB, user *User, otherID uint) (*IgnoreUser, *gz.ErrMsg) {
	var entry IgnoreUser
	if err := tx.Where("user_id = ? AND ignored_user_id = ?", user.ID, otherID).First(&entry).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorIDNotFound, err)
		}
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	if err := tx.Delete(&entry).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbDelete, err)
	}
	gz.LoggerFromContext(ctx).Info("User ", user.ID, " no longer ignores user ", otherID)
	return &entry, nil
}

// BlockedList returns the paginated list of users ignored by user.
func (us *Service) BlockedList(p *gz.PaginationRequest, tx *gorm.DB,
	user *User) (*UserResponses, *gz.PaginationResult, *gz.ErrMsg) {
	var list Users
	q := tx.Model(&User{}).Select("users.*").
		Joins("JOIN ignore_users ON ignore_users.ignored_user_id = users.id").
		Where("ignore_users.user_id = ?", user.ID).
		Order("ignore_users.created_at desc")

	pagination, err := gz.PaginateQuery(q, &list, *p)
	if err != nil {
		return nil, nil, gz.NewErrorMessageWithBase(gz.ErrorInvalidPaginationRequest, err)
	}
	if !pagination.PageFound {
		return nil, nil, gz.NewErrorMessage(gz.ErrorPaginationPageNotFound)
	}

	responses := UserResponses{}
	for i := range list {
		responses = append(responses, us.CreateUserResponse(tx, &list[i], user))
	}
	return &responses, pagination, nil
}

func (us *Service) isSystemAdmin(user *User) bool {
	if us.Permissions == nil || user == nil || user.Username == nil {
		return false
	}
	return us.Permissions.IsSystemAdmin(*user.Username)
}
