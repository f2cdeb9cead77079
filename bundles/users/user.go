package users

import (
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// User information
type User struct {
	gorm.Model

	Identity *string `gorm:"unique" json:"identity,omitempty"`

	// Person name
	Name *string `json:"name,omitempty"`

	// Username is unique in the community
	Username *string `gorm:"not null;unique" json:"username,omitempty" validate:"required,min=3,alphanum,notinblacklist"`

	Email *string `json:"email,omitempty" validate:"required,email"`

	// About is a free text shown in the profile page.
	About *string `gorm:"type:text" json:"about,omitempty"`

	CountryID *uint `json:"country_id,omitempty"`
	RoleID    *uint `json:"role_id,omitempty"`

	// Rating is the accumulated reputation received by the user. It is a
	// denormalized value refreshed by the reputation recompute job.
	Rating int `gorm:"not null;default:0" json:"rating"`

	// Points are granted for authored content (topics, gallery items, comments).
	Points int `gorm:"not null;default:0" json:"points"`

	IsBan bool `gorm:"not null;default:false" json:"is_ban"`
}

// Users is an slice of User
type Users []User

// UserResponse stores user information used in REST responses.
type UserResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	About    string `json:"about,omitempty"`
	Country  string `json:"country,omitempty"`
	Role     string `json:"role,omitempty"`
	Rating   int    `json:"rating"`
	Points   int    `json:"points"`
	IsBan    bool   `json:"is_ban"`
	// PositiveReputation and NegativeReputation are derived from the
	// reputation entries received by the user.
	PositiveReputation int `json:"positive_reputation"`
	NegativeReputation int `json:"negative_reputation"`
	// private
	Email string `json:"email,omitempty"`
	// True if the user is a system administrator
	SysAdmin bool `json:"sysAdmin"`
	// True if the requesting user ignores this user
	Ignored bool `json:"ignored"`
}

// UserResponses is a slice of UserResponse
type UserResponses []UserResponse

// CreateUserInput is the input used to register the user behind a JWT.
type CreateUserInput struct {
	Username string  `json:"username" form:"username" validate:"required,min=3,alphanum,notinblacklist"`
	Name     *string `json:"name,omitempty" form:"name"`
	Email    string  `json:"email" form:"email" validate:"required,email"`
}

// UpdateUserInput encapsulates data that can be updated in an user
type UpdateUserInput struct {
	// Optional name
	Name *string `json:"name,omitempty" form:"name"`
	// Optional email
	Email     *string `json:"email" form:"email" validate:"omitempty,email"`
	About     *string `json:"about,omitempty" form:"about" validate:"omitempty,max=2000"`
	CountryID *uint   `json:"country_id,omitempty" form:"country_id"`
}

// IsEmpty returns true is the struct is empty.
func (uu UpdateUserInput) IsEmpty() bool {
	return uu.Name == nil && uu.Email == nil && uu.About == nil && uu.CountryID == nil
}

// ByUsername queries a user by username.
func ByUsername(tx *gorm.DB, username string, deleted bool) (*User, *gz.ErrMsg) {
	q := tx
	if deleted {
		// Allow to search in already deleted users
		q = q.Unscoped()
	}
	var user User
	if err := q.Where("username = ?", username).First(&user).Error; err != nil && !gorm.IsRecordNotFoundError(err) {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	if user.Username == nil {
		return nil, gz.NewErrorMessage(gz.ErrorUserUnknown)
	}
	return &user, nil
}

// ByIdentity queries a user by identity.
func ByIdentity(tx *gorm.DB, identity string, deleted bool) (*User, *gz.ErrMsg) {
	q := tx
	if deleted {
		// Allow to search in already deleted users
		q = q.Unscoped()
	}
	var aUser User
	if err := q.Where("identity = ?", identity).First(&aUser).Error; err != nil && !gorm.IsRecordNotFoundError(err) {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	if aUser.Identity == nil || *aUser.Identity != identity {
		return nil, gz.NewErrorMessage(gz.ErrorAuthNoUser)
	}
	return &aUser, nil
}

// ByID queries an active user by its primary key.
func ByID(tx *gorm.DB, id uint) (*User, *gz.ErrMsg) {
	var user User
	if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, gz.NewErrorMessage(gz.ErrorUserUnknown)
		}
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	return &user, nil
}

// Owner returns the id of the user with the given id. It allows a user
// profile to be treated as any other rated object, where the profile is owned
// by the user itself.
func Owner(tx *gorm.DB, id uint) (uint, *gz.ErrMsg) {
	user, em := ByID(tx, id)
	if em != nil {
		return 0, em
	}
	return user.ID, nil
}
