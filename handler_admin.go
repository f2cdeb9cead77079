package main

import (
	"net/http"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/forum"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/generics"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/lookups"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/globals"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// moderatorRoleName is the profile role that grants moderator permissions.
const moderatorRoleName = "moderator"

// AdminIDHandler is an IDHandler restricted to system admins.
func AdminIDHandler(handler idFn) gz.HandlerWithResult {
	return IDHandler("id", true, func(id uint, user *users.User, tx *gorm.DB,
		w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
		if !globals.Permissions.IsSystemAdmin(*user.Username) {
			return nil, gz.NewErrorMessage(gz.ErrorUnauthorized)
		}
		return handler(id, user, tx, w, r)
	})
}

// AdminSectionList returns every forum section, active or not.
//
//	curl -k -X GET https://localhost:4430/1.0/admin/sections --header "Private-token: YOUR_TOKEN"
func AdminSectionList(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	if _, em := requireSystemAdmin(tx, r); em != nil {
		return nil, em
	}
	return globals.Forum.SectionList(tx, true)
}

// AdminSectionCreate creates a forum section.
//
//	curl -k -H "Content-Type: application/json" -X POST -d '{"name":"robots", "title":"Robots"}'
//	  https://localhost:4430/1.0/admin/sections --header "Private-token: YOUR_TOKEN"
func AdminSectionCreate(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	if _, em := requireSystemAdmin(tx, r); em != nil {
		return nil, em
	}
	var cs forum.CreateSection
	if em := parseBody(&cs, r); em != nil {
		return nil, em
	}
	section, em := globals.Forum.CreateSection(r.Context(), tx, &cs)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return section, nil
}

// AdminSectionUpdate updates a forum section.
func AdminSectionUpdate(id uint, _ *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	var us forum.UpdateSection
	if em := parseBody(&us, r); em != nil {
		return nil, em
	}
	section, em := globals.Forum.UpdateSection(r.Context(), tx, id, &us)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return section, nil
}

// AdminSectionRemove removes a forum section together with its topics.
func AdminSectionRemove(id uint, _ *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	section, em := globals.Forum.DeleteSection(r.Context(), tx, id)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbDelete); em != nil {
		return nil, em
	}
	return section, nil
}

// AdminTopicList returns the started topics, approved or not, with their
// votes and comment counts. Topics can be filtered with the q, section_id,
// author_id, approved and news parameters.
//
//	curl -k -X GET https://localhost:4430/1.0/admin/topics?q=robots&approved=false
//	  --header "Private-token: YOUR_TOKEN"
func AdminTopicList(p *gz.PaginationRequest, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg) {

	if !globals.Permissions.IsSystemAdmin(*user.Username) {
		return nil, nil, gz.NewErrorMessage(gz.ErrorUnauthorized)
	}
	var c forum.TopicCriteria
	if errs := globals.FormDecoder.Decode(&c, r.URL.Query()); errs != nil {
		return nil, nil, generics.NewUnprocessableError(errs, getDecodeErrorsExtraInfo(errs))
	}
	return globals.Forum.ModeratedTopicList(p, tx, &c)
}

// AdminTopicModerate approves, hides or promotes a topic to the news.
//
//	curl -k -H "Content-Type: application/json" -X PATCH -d '{"news":true}'
//	  https://localhost:4430/1.0/admin/topics/{id} --header "Private-token: YOUR_TOKEN"
func AdminTopicModerate(id uint, _ *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	var mt forum.ModerateTopic
	if em := parseBody(&mt, r); em != nil {
		return nil, em
	}
	topic, em := globals.Forum.ModerateTopic(r.Context(), tx, id, &mt)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return topic, nil
}

// CountryList returns the countries users can pick in their profile.
func CountryList(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	return globals.LookupsSvc.CountryList()
}

// RoleList returns the profile roles.
func RoleList(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	return globals.LookupsSvc.RoleList()
}

// commitLookups commits the request transaction and drops the cached
// countries and roles, so the next read sees the change.
func commitLookups(tx *gorm.DB, code int) *gz.ErrMsg {
	if em := commit(tx, code); em != nil {
		return em
	}
	globals.Lookups.Invalidate()
	return nil
}

// AdminCountryCreate creates a country.
//
//	curl -k -H "Content-Type: application/json" -X POST -d '{"name":"Spain", "code":"ES"}'
//	  https://localhost:4430/1.0/admin/countries --header "Private-token: YOUR_TOKEN"
func AdminCountryCreate(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	if _, em := requireSystemAdmin(tx, r); em != nil {
		return nil, em
	}
	var in lookups.CountryInput
	if em := parseBody(&in, r); em != nil {
		return nil, em
	}
	c, em := globals.LookupsSvc.CreateCountry(r.Context(), tx, &in)
	if em != nil {
		return nil, em
	}
	if em := commitLookups(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return c, nil
}

// AdminCountryUpdate updates a country.
func AdminCountryUpdate(id uint, _ *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	var in lookups.CountryInput
	if em := parseBody(&in, r); em != nil {
		return nil, em
	}
	c, em := globals.LookupsSvc.UpdateCountry(r.Context(), tx, id, &in)
	if em != nil {
		return nil, em
	}
	if em := commitLookups(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return c, nil
}

// AdminCountryRemove removes a country.
func AdminCountryRemove(id uint, _ *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	c, em := globals.LookupsSvc.DeleteCountry(r.Context(), tx, id)
	if em != nil {
		return nil, em
	}
	if em := commitLookups(tx, gz.ErrorDbDelete); em != nil {
		return nil, em
	}
	return c, nil
}

// AdminRoleCreate creates a profile role.
func AdminRoleCreate(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	if _, em := requireSystemAdmin(tx, r); em != nil {
		return nil, em
	}
	var in lookups.RoleInput
	if em := parseBody(&in, r); em != nil {
		return nil, em
	}
	role, em := globals.LookupsSvc.CreateRole(r.Context(), tx, &in)
	if em != nil {
		return nil, em
	}
	if em := commitLookups(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return role, nil
}

// AdminRoleUpdate updates a profile role.
func AdminRoleUpdate(id uint, _ *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	var in lookups.RoleInput
	if em := parseBody(&in, r); em != nil {
		return nil, em
	}
	role, em := globals.LookupsSvc.UpdateRole(r.Context(), tx, id, &in)
	if em != nil {
		return nil, em
	}
	if em := commitLookups(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return role, nil
}

// AdminRoleRemove removes a profile role.
func AdminRoleRemove(id uint, _ *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	role, em := globals.LookupsSvc.DeleteRole(r.Context(), tx, id)
	if em != nil {
		return nil, em
	}
	if em := commitLookups(tx, gz.ErrorDbDelete); em != nil {
		return nil, em
	}
	return role, nil
}

// AdminUserRole is the input of AdminUserSetRole.
type AdminUserRole struct {
	// RoleID is the new profile role. Empty clears it.
	RoleID *uint `json:"role_id,omitempty" form:"role_id"`
}

// AdminUserSetRole sets the profile role of a user. The "moderator" role
// also grants moderator permissions.
//
//	curl -k -X PATCH -d '{"role_id":2}' https://localhost:4430/1.0/admin/users/{id}/role
//	  --header "Private-token: YOUR_TOKEN"
func AdminUserSetRole(id uint, _ *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	var in AdminUserRole
	if em := parseBody(&in, r); em != nil {
		return nil, em
	}
	moderator := false
	if in.RoleID != nil {
		role, found, err := globals.Lookups.Role(*in.RoleID)
		if err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
		}
		if !found {
			return nil, gz.NewErrorMessage(gz.ErrorFormInvalidValue)
		}
		moderator = *role.Name == moderatorRoleName
	}

	response, em := globals.Users.SetRole(r.Context(), tx, id, in.RoleID, moderator)
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

// AdminUserBan returns a handler that bans or unbans a user. Banned users
// cannot create content.
//
//	curl -k -X POST https://localhost:4430/1.0/admin/users/{id}/ban --header "Private-token: YOUR_TOKEN"
func AdminUserBan(ban bool) gz.HandlerWithResult {
	return AdminIDHandler(func(id uint, _ *users.User, tx *gorm.DB,
		w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

		response, em := globals.Users.SetBan(r.Context(), tx, id, ban)
		if em != nil {
			return nil, em
		}
		if em := commit(tx, gz.ErrorDbSave); em != nil {
			return nil, em
		}
		return response, nil
	})
}

// AdminRecomputeRating recomputes the rating of a user from the reputation
// entries received.
//
//	curl -k -X POST https://localhost:4430/1.0/admin/users/{id}/recompute_rating
//	  --header "Private-token: YOUR_TOKEN"
func AdminRecomputeRating(id uint, _ *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	if _, em := users.ByID(tx, id); em != nil {
		return nil, em
	}
	rating, em := globals.Reputation.RecomputeUserScore(r.Context(), tx, id)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return struct {
		ID     uint `json:"id"`
		Rating int  `json:"rating"`
	}{id, rating}, nil
}
