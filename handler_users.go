package main

import (
	"net/http"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/globals"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// Login returns information about the user associated with a JWT
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/login
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func Login(tx *gorm.DB, w http.ResponseWriter,
	r *http.Request) (interface{}, *gz.ErrMsg) {

	user, em := userFromRequest(tx, r, true)
	if em != nil {
		return nil, em
	}
	response := globals.Users.CreateUserResponse(tx, user, user)
	if em := decorateProfile(tx, user, &response); em != nil {
		return nil, em
	}
	return response, nil
}

// UserCreate registers the user behind the JWT.
// You can request this method with the following cURL request:
//
//	curl -k -H "Content-Type: application/json" -X POST -d '{"name":"John Doe",
//	  "username":"johndoe", "email":"johndoe@example.com"}'
//	  https://localhost:4430/1.0/users
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func UserCreate(tx *gorm.DB, w http.ResponseWriter,
	r *http.Request) (interface{}, *gz.ErrMsg) {

	identity, ok := gz.GetUserIdentity(r)
	if !ok {
		return nil, gz.NewErrorMessage(gz.ErrorAuthJWTInvalid)
	}

	var in users.CreateUserInput
	if em := parseBody(&in, r); em != nil {
		return nil, em
	}

	response, em := globals.Users.CreateUser(r.Context(), tx, identity, &in)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return response, nil
}

// UserList returns the users ranked by rating.
func UserList(p *gz.PaginationRequest, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg) {
	return globals.Users.UserList(p, tx, user)
}

// UserIndex returns the profile of a user, with the reputation received
// and the country and role names.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/user/{id}
func UserIndex(id uint, jwtUser *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	user, em := users.ByID(tx, id)
	if em != nil {
		return nil, em
	}
	response := globals.Users.CreateUserResponse(tx, user, jwtUser)
	if em := decorateProfile(tx, user, &response); em != nil {
		return nil, em
	}
	return response, nil
}

// UserUpdate updates a user.
// You can request this method with the following cURL request:
//
//	curl -k -X PATCH -d '{"name":"New name", "about": "Hi"}'
//	  --url https://localhost:4430/1.0/user/{id}
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func UserUpdate(id uint, jwtUser *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	var uu users.UpdateUserInput
	if em := parseBody(&uu, r); em != nil {
		return nil, em
	}
	if uu.IsEmpty() {
		return nil, gz.NewErrorMessage(gz.ErrorFormInvalidValue)
	}
	if uu.CountryID != nil {
		if _, found, err := globals.Lookups.Country(*uu.CountryID); err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
		} else if !found {
			return nil, gz.NewErrorMessage(gz.ErrorFormInvalidValue)
		}
	}

	response, em := globals.Users.UpdateUser(r.Context(), tx, id, &uu, jwtUser)
	if em != nil {
		return nil, em
	}
	if em := decorateProfile(tx, nil, response); em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return response, nil
}

// decorateProfile fills the derived fields of a profile: positive and
// negative reputation counts, and the names of the country and role. If
// user is nil it is loaded from the response id.
func decorateProfile(tx *gorm.DB, user *users.User, response *users.UserResponse) *gz.ErrMsg {
	if user == nil {
		var em *gz.ErrMsg
		if user, em = users.ByID(tx, response.ID); em != nil {
			return em
		}
	}

	counts, err := globals.Reputation.UserCounts(tx, user.ID)
	if err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	response.PositiveReputation = counts.Positive
	response.NegativeReputation = counts.Negative

	if user.CountryID != nil {
		if c, found, err := globals.Lookups.Country(*user.CountryID); err == nil && found {
			response.Country = *c.Name
		}
	}
	if user.RoleID != nil {
		if role, found, err := globals.Lookups.Role(*user.RoleID); err == nil && found {
			response.Role = role.Title
			if response.Role == "" {
				response.Role = *role.Name
			}
		}
	}
	return nil
}

// IgnoreCreate adds a user to the block list of the JWT user. Blocked users
// cannot rate each other nor browse each other's gallery.
// You can request this method with the following cURL request:
//
//	curl -k -X POST --url https://localhost:4430/1.0/user/{id}/ignore
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func IgnoreCreate(id uint, jwtUser *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	entry, em := globals.Users.Block(r.Context(), tx, jwtUser, id)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return entry, nil
}

// IgnoreRemove removes a user from the block list of the JWT user.
// You can request this method with the following cURL request:
//
//	curl -k -X DELETE --url https://localhost:4430/1.0/user/{id}/ignore
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func IgnoreRemove(id uint, jwtUser *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	entry, em := globals.Users.Unblock(r.Context(), tx, jwtUser, id)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbDelete); em != nil {
		return nil, em
	}
	return entry, nil
}

// IgnoredList returns the users blocked by the JWT user.
func IgnoredList(p *gz.PaginationRequest, jwtUser *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg) {
	return globals.Users.BlockedList(p, tx, jwtUser)
}
