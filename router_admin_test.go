package main

import (
	"fmt"
	"testing"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/comments"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/forum"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/generics"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/lookups"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/globals"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests for admin routes

// roleByName returns the id of the profile role with the given name.
func roleByName(t *testing.T, name string) uint {
	var roles lookups.Roles
	assertRequest(t, "GET", "/1.0/roles", nil, nil, nil, &roles)
	for _, r := range roles {
		if *r.Name == name {
			return r.ID
		}
	}
	require.Fail(t, "role not found", name)
	return 0
}

// setUserRole sets the profile role of a user as a system admin.
func setUserRole(t *testing.T, admin, user *testUser, role string) users.UserResponse {
	id := roleByName(t, role)
	var ur users.UserResponse
	assertRequest(t, "PATCH", fmt.Sprintf("/1.0/admin/users/%d/role", user.ID), &admin.JWT,
		AdminUserRole{RoleID: &id}, nil, &ur)
	return ur
}

// TestAdminSections tests the forum sections administration.
func TestAdminSections(t *testing.T) {
	setup()
	admin := createSysAdminUser(t)
	user := createUser(t)
	unauthorized := gz.NewErrorMessage(gz.ErrorUnauthorized)

	assertRequest(t, "POST", "/1.0/admin/sections", &user.JWT,
		forum.CreateSection{Name: "robots", Title: "Robots"}, unauthorized, nil)
	assertRequest(t, "POST", "/1.0/admin/sections", &admin.JWT,
		forum.CreateSection{Name: "forum", Title: "Blacklisted"}, generics.NewUnprocessableError(nil, nil), nil)

	s := createSection(t, admin, "robots", true)
	assert.Equal(t, "robots", *s.Slug)
	assertRequest(t, "POST", "/1.0/admin/sections", &admin.JWT,
		forum.CreateSection{Name: "robots", Title: "Again"}, gz.NewErrorMessage(gz.ErrorResourceExists), nil)

	uri := fmt.Sprintf("/1.0/admin/sections/%d", s.ID)
	assertRequest(t, "PATCH", uri, &user.JWT, forum.UpdateSection{Title: sptr("x")}, unauthorized, nil)
	assertRequest(t, "PATCH", uri, &admin.JWT,
		forum.UpdateSection{Title: sptr("Robotics"), IsActive: bptr(false)}, nil, &s)
	assert.Equal(t, "Robotics", s.Title)
	assert.False(t, s.IsActive)

	var sections forum.Sections
	assertRequest(t, "GET", "/1.0/forum/sections", nil, nil, nil, &sections)
	assert.Len(t, sections, 1)

	assertRequest(t, "DELETE", uri, &user.JWT, nil, unauthorized, nil)
	assertRequest(t, "DELETE", uri, &admin.JWT, nil, nil, nil)
	assertRequest(t, "DELETE", uri, &admin.JWT, nil, gz.NewErrorMessage(gz.ErrorIDNotFound), nil)
}

// TestAdminSectionRemoveCascades checks removing a section removes its
// topics, their comments and all the votes on both.
func TestAdminSectionRemoveCascades(t *testing.T) {
	setup()
	admin := createSysAdminUser(t)
	author := createUser(t)
	voter := createUser(t)
	s := createSection(t, admin, "doomed", true)
	topic := createTopic(t, author, s.ID, "Doomed")
	topicURI := fmt.Sprintf("/1.0/forum/topic/%d", topic.ID)

	var c comments.Comment
	assertRequest(t, "POST", fmt.Sprintf("/1.0/forum-topic/%d/comments", topic.ID), &voter.JWT,
		comments.CreateComment{Content: "Bye"}, nil, &c)
	vote(t, voter, topicURI, 1, nil)
	vote(t, author, fmt.Sprintf("/1.0/comment/%d", c.ID), -1, nil)

	assertRequest(t, "DELETE", fmt.Sprintf("/1.0/admin/sections/%d", s.ID), &admin.JWT, nil, nil, nil)
	assertRequest(t, "GET", topicURI, &author.JWT, nil, gz.NewErrorMessage(gz.ErrorIDNotFound), nil)

	var count int
	globals.Server.Db.Model(&reputation.Entry{}).Count(&count)
	assert.Zero(t, count)
	globals.Server.Db.Model(&comments.Comment{}).Count(&count)
	assert.Zero(t, count)
	u := dbGetUserByID(author.ID)
	assert.Zero(t, u.Points)
}

// TestAdminSectionClosedToUsers tests sections where only moderators can
// add topics.
func TestAdminSectionClosedToUsers(t *testing.T) {
	setup()
	admin := createSysAdminUser(t)
	user := createUser(t)

	var s forum.Section
	assertRequest(t, "POST", "/1.0/admin/sections", &admin.JWT, forum.CreateSection{Name: "announcements",
		Title: "Announcements", UserCanAddTopics: bptr(false)}, nil, &s)
	assert.False(t, s.UserCanAddTopics)

	in := forum.CreateTopic{SectionID: s.ID, Title: "Hello", Content: "Hello"}
	assertRequest(t, "POST", "/1.0/forum/topic", &user.JWT, in, generics.NewForbiddenError(""), nil)
	assertRequest(t, "POST", "/1.0/forum/topic", &admin.JWT, in, nil, nil)

	uri := fmt.Sprintf("/1.0/admin/sections/%d", s.ID)
	assertRequest(t, "PATCH", uri, &admin.JWT, forum.UpdateSection{UserCanAddTopics: bptr(true)}, nil, &s)
	assert.True(t, s.UserCanAddTopics)
	assertRequest(t, "POST", "/1.0/forum/topic", &user.JWT, in, nil, nil)
}

// TestAdminTopics tests the topics moderation list and the approval and
// news flags.
func TestAdminTopics(t *testing.T) {
	setup()
	admin := createSysAdminUser(t)
	author := createUser(t)
	voter := createUser(t)
	general := generalSection(t)
	drones := createTopic(t, author, general.ID, "Drone racing")
	rovers := createTopic(t, author, general.ID, "Rover wheels")
	unauthorized := gz.NewErrorMessage(gz.ErrorUnauthorized)

	assertRequest(t, "POST", fmt.Sprintf("/1.0/forum-topic/%d/comments", drones.ID), &voter.JWT,
		comments.CreateComment{Content: "Fast"}, nil, nil)
	vote(t, voter, fmt.Sprintf("/1.0/forum/topic/%d", drones.ID), -1, nil)

	uri := fmt.Sprintf("/1.0/admin/topics/%d", drones.ID)
	var tr forum.TopicResponse
	assertRequest(t, "PATCH", uri, &author.JWT, forum.ModerateTopic{News: bptr(true)}, unauthorized, nil)
	assertRequest(t, "PATCH", uri, &admin.JWT, forum.ModerateTopic{News: bptr(true), Approved: bptr(false)}, nil, &tr)
	assert.True(t, tr.News)
	assert.False(t, tr.Approved)
	assertRequest(t, "PATCH", "/1.0/admin/topics/999999", &admin.JWT, forum.ModerateTopic{News: bptr(true)},
		gz.NewErrorMessage(gz.ErrorIDNotFound), nil)

	var list forum.ModeratedTopics
	assertRequest(t, "GET", "/1.0/admin/topics", &author.JWT, nil, unauthorized, nil)
	assertRequest(t, "GET", "/1.0/admin/topics?q=drone", &admin.JWT, nil, nil, &list)
	require.Len(t, list, 1)
	assert.Equal(t, drones.ID, list[0].ID)
	assert.Equal(t, 1, list[0].CommentCount)
	assert.Equal(t, 1, list[0].Negative)
	assert.Equal(t, 0, list[0].Positive)

	assertRequest(t, "GET", "/1.0/admin/topics?approved=true", &admin.JWT, nil, nil, &list)
	require.Len(t, list, 1)
	assert.Equal(t, rovers.ID, list[0].ID)
	assertRequest(t, "GET", "/1.0/admin/topics?news=maybe", &admin.JWT, nil,
		generics.NewUnprocessableError(nil, nil), nil)
}

// TestAdminLookups tests the countries and roles administration, and that
// the cached lists see the changes.
func TestAdminLookups(t *testing.T) {
	setup()
	admin := createSysAdminUser(t)
	user := createUser(t)
	unauthorized := gz.NewErrorMessage(gz.ErrorUnauthorized)

	var countries lookups.Countries
	assertRequest(t, "GET", "/1.0/countries", nil, nil, nil, &countries)
	assert.Empty(t, countries)

	assertRequest(t, "POST", "/1.0/admin/countries", &user.JWT, lookups.CountryInput{Name: "Spain"}, unauthorized, nil)
	assertRequest(t, "POST", "/1.0/admin/countries", &admin.JWT, lookups.CountryInput{Name: "Spain", Code: "ESP"},
		generics.NewUnprocessableError(nil, nil), nil)
	var c lookups.Country
	assertRequest(t, "POST", "/1.0/admin/countries", &admin.JWT, lookups.CountryInput{Name: "Spain", Code: "ES"}, nil, &c)
	assertRequest(t, "GET", "/1.0/countries", nil, nil, nil, &countries)
	require.Len(t, countries, 1)
	assert.Equal(t, "ES", countries[0].Code)

	uri := fmt.Sprintf("/1.0/admin/countries/%d", c.ID)
	assertRequest(t, "PATCH", uri, &admin.JWT, lookups.CountryInput{Name: "España", Code: "ES"}, nil, &c)
	assertRequest(t, "GET", "/1.0/countries", nil, nil, nil, &countries)
	assert.Equal(t, "España", *countries[0].Name)
	assertRequest(t, "DELETE", uri, &admin.JWT, nil, nil, nil)
	assertRequest(t, "GET", "/1.0/countries", nil, nil, nil, &countries)
	assert.Empty(t, countries)

	// Default roles
	var roles lookups.Roles
	assertRequest(t, "GET", "/1.0/roles", nil, nil, nil, &roles)
	assert.Len(t, roles, 2)

	var role lookups.Role
	assertRequest(t, "POST", "/1.0/admin/roles", &admin.JWT, lookups.RoleInput{Name: "mentor", Title: "Mentor"}, nil, &role)
	assertRequest(t, "PATCH", fmt.Sprintf("/1.0/admin/roles/%d", role.ID), &admin.JWT,
		lookups.RoleInput{Name: "mentor", Title: "Senior mentor"}, nil, &role)
	assert.Equal(t, "Senior mentor", role.Title)

	ur := setUserRole(t, admin, user, "mentor")
	assert.Equal(t, "Senior mentor", ur.Role)
	assert.False(t, globals.Permissions.IsModerator(user.Username))

	assertRequest(t, "DELETE", fmt.Sprintf("/1.0/admin/roles/%d", role.ID), &user.JWT, nil, unauthorized, nil)
	assertRequest(t, "DELETE", fmt.Sprintf("/1.0/admin/roles/%d", role.ID), &admin.JWT, nil, nil, nil)
	assertRequest(t, "GET", "/1.0/roles", nil, nil, nil, &roles)
	assert.Len(t, roles, 2)
}

// TestAdminUserRole tests that the moderator profile role grants moderator
// permissions.
func TestAdminUserRole(t *testing.T) {
	setup()
	admin := createSysAdminUser(t)
	user := createUser(t)

	uri := fmt.Sprintf("/1.0/admin/users/%d/role", user.ID)
	unknown := uint(999999)
	assertRequest(t, "PATCH", uri, &admin.JWT, AdminUserRole{RoleID: &unknown},
		gz.NewErrorMessage(gz.ErrorFormInvalidValue), nil)
	assertRequest(t, "PATCH", uri, &user.JWT, AdminUserRole{}, gz.NewErrorMessage(gz.ErrorUnauthorized), nil)

	ur := setUserRole(t, admin, user, moderatorRoleName)
	assert.Equal(t, "Moderator", ur.Role)
	assert.True(t, globals.Permissions.IsModerator(user.Username))

	// Clearing the role revokes the permissions
	assertRequest(t, "PATCH", uri, &admin.JWT, AdminUserRole{}, nil, &ur)
	assert.Empty(t, ur.Role)
	assert.False(t, globals.Permissions.IsModerator(user.Username))
}

// TestAdminRecomputeRating tests the repair of the stored user rating.
func TestAdminRecomputeRating(t *testing.T) {
	setup()
	admin := createSysAdminUser(t)
	author := createUser(t)
	voter1 := createUser(t)
	voter2 := createUser(t)
	topic := createTopic(t, author, generalSection(t).ID, "Recompute")

	topicURI := fmt.Sprintf("/1.0/forum/topic/%d", topic.ID)
	profileURI := fmt.Sprintf("/1.0/user/%d", author.ID)
	vote(t, voter1, topicURI, 1, nil)
	vote(t, voter2, topicURI, -1, nil)
	vote(t, voter1, profileURI, 1, nil)
	vote(t, voter2, profileURI, 1, nil)

	uri := fmt.Sprintf("/1.0/admin/users/%d/recompute_rating", author.ID)
	assertRequest(t, "POST", uri, &author.JWT, nil, gz.NewErrorMessage(gz.ErrorUnauthorized), nil)
	var res struct {
		ID     uint `json:"id"`
		Rating int  `json:"rating"`
	}
	assertRequest(t, "POST", uri, &admin.JWT, nil, nil, &res)
	assert.Equal(t, author.ID, res.ID)
	assert.Equal(t, 2, res.Rating)

	var ur users.UserResponse
	assertRequest(t, "GET", profileURI, nil, nil, nil, &ur)
	assert.Equal(t, 2, ur.Rating)
	assert.Equal(t, 3, ur.PositiveReputation)
	assert.Equal(t, 1, ur.NegativeReputation)

	assertRequest(t, "POST", "/1.0/admin/users/999999/recompute_rating", &admin.JWT, nil,
		gz.NewErrorMessage(gz.ErrorUserUnknown), nil)
}

// TestAdminSearchConfig tests the ElasticSearch configuration routes. No
// ElasticSearch server is available in tests.
func TestAdminSearchConfig(t *testing.T) {
	setup()
	admin := createSysAdminUser(t)
	user := createUser(t)

	assertRequest(t, "GET", "/1.0/admin/search", &user.JWT, nil, gz.NewErrorMessage(gz.ErrorUnauthorized), nil)

	var configs []ElasticSearchConfig
	assertRequest(t, "GET", "/1.0/admin/search", &admin.JWT, nil, nil, &configs)
	assert.Empty(t, configs)

	assertRequest(t, "POST", "/1.0/admin/search", &admin.JWT,
		AdminSearchRequest{Address: "not an url"}, generics.NewUnprocessableError(nil, nil), nil)
	var cfg ElasticSearchConfig
	assertRequest(t, "POST", "/1.0/admin/search", &admin.JWT,
		AdminSearchRequest{Address: "http://localhost:9200", Username: "elastic", Password: "secret", Primary: true},
		nil, &cfg)
	assert.Equal(t, "http://localhost:9200", cfg.Address)
	assert.Empty(t, cfg.Password, "the password is never returned")

	assertRequest(t, "GET", "/1.0/admin/search", &admin.JWT, nil, nil, &configs)
	require.Len(t, configs, 1)
	assert.True(t, configs[0].IsPrimary)

	// Without a connected client the index cannot be rebuilt
	assertRequest(t, "GET", "/1.0/admin/search/rebuild", &admin.JWT, nil,
		gz.NewErrorMessage(gz.ErrorUnexpected), nil)

	uri := fmt.Sprintf("/1.0/admin/search/%d", cfg.ID)
	assertRequest(t, "DELETE", uri, &user.JWT, nil, gz.NewErrorMessage(gz.ErrorUnauthorized), nil)
	assertRequest(t, "DELETE", uri, &admin.JWT, nil, nil, nil)
	assertRequest(t, "GET", "/1.0/admin/search", &admin.JWT, nil, nil, &configs)
	assert.Empty(t, configs)
}
