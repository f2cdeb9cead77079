package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/generics"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/lookups"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/globals"
	"github.com/dgrijalva/jwt-go"
	"github.com/gazebo-web/gz-go/v7"
	gztest "github.com/gazebo-web/gz-go/v7/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests for user related routes

// loginUserTest represents the input and expected output for a TestUserLogin test case.
type loginUserTest struct {
	uriTest
	// expected username in user response
	expUsername string
}

// TestUserLogin tests the /login route.
func TestUserLogin(t *testing.T) {
	setup()
	user := createUser(t)

	uri := "/1.0/login"
	loginUserTestsData := []loginUserTest{
		{uriTest{"valid login", uri, user.jwtDef(), nil, false}, user.Username},
		{uriTest{"invalid token", uri, newJWT("pahjtrkjfd"),
			gz.NewErrorMessage(gz.ErrorUnauthorized), true}, ""},
		{uriTest{"invalid claims - no sub", uri,
			newClaimsJWT(&jwt.MapClaims{"invalid": "user"}),
			gz.NewErrorMessage(gz.ErrorAuthJWTInvalid), false}, ""},
		{uriTest{"unexistent identity", uri,
			newClaimsJWT(&jwt.MapClaims{"sub": "non-existing-user"}),
			gz.NewErrorMessage(gz.ErrorAuthNoUser), false}, ""},
	}

	for _, test := range loginUserTestsData {
		t.Run(test.testDesc, func(t *testing.T) {
			jwt := getJWTToken(t, test.jwtGen)
			expEm, expCt := errMsgAndContentType(test.expErrMsg, ctJSON)
			reqArgs := gztest.RequestArgs{Method: "GET", Route: test.URL, Body: nil, SignedToken: jwt}
			resp := gztest.AssertRouteMultipleArgsStruct(reqArgs, expEm.StatusCode, expCt, t)
			bslice := resp.BodyAsBytes
			if expEm.StatusCode == http.StatusOK {
				var ur users.UserResponse
				require.NoError(t, json.Unmarshal(*bslice, &ur))
				assert.Equal(t, test.expUsername, ur.Username)
				assert.Equal(t, test.expUsername+"@example.com", ur.Email, "the user should see its own email")
			} else if !test.ignoreErrorBody {
				gztest.AssertBackendErrorCode(t.Name()+" GET /login", bslice, expEm.ErrCode, t)
			}
		})
	}
}

// createUserTest includes the input and expected output for a TestUserCreate test case.
type createUserTest struct {
	uriTest
	user users.CreateUserInput
}

// TestUserCreate tests the POST /users route.
func TestUserCreate(t *testing.T) {
	setup()
	existing := createUser(t)

	jwtDef := newJWT(createValidJWTForIdentity("another-user", t))
	uri := "/1.0/users"
	invalid := generics.NewUnprocessableError(nil, nil)

	userCreateTestsData := []createUserTest{
		{uriTest{"no username", uri, jwtDef, invalid, false},
			users.CreateUserInput{Email: "a@example.com"}},
		{uriTest{"blacklisted username", uri, jwtDef, invalid, false},
			users.CreateUserInput{Username: "admin", Email: "a@example.com"}},
		{uriTest{"no email", uri, jwtDef, invalid, false},
			users.CreateUserInput{Username: "nomail"}},
		{uriTest{"short username", uri, jwtDef, invalid, false},
			users.CreateUserInput{Username: "aa", Email: "a@example.com"}},
		{uriTest{"invalid username", uri, jwtDef, invalid, false},
			users.CreateUserInput{Username: "d aaaa", Email: "a@example.com"}},
		{uriTest{"no jwt", uri, nil, gz.NewErrorMessage(gz.ErrorUnauthorized), true},
			users.CreateUserInput{Username: "nojwt", Email: "a@example.com"}},
		{uriTest{"dup username", uri, jwtDef, gz.NewErrorMessage(gz.ErrorResourceExists), false},
			users.CreateUserInput{Username: existing.Username, Email: "a@example.com"}},
		// Note: the following test cases are inter-related.
		{uriTest{"valid user", uri, jwtDef, nil, false},
			users.CreateUserInput{Username: "anotheruser", Name: sptr("Another"), Email: "a@example.com"}},
		{uriTest{"another user using existent JWT", uri, jwtDef, gz.NewErrorMessage(gz.ErrorResourceExists), false},
			users.CreateUserInput{Username: "thirduser", Email: "a@example.com"}},
	}

	for _, test := range userCreateTestsData {
		t.Run(test.testDesc, func(t *testing.T) {
			if test.ignoreErrorBody {
				jwt := getJWTToken(t, test.jwtGen)
				expEm, expCt := errMsgAndContentType(test.expErrMsg, ctJSON)
				reqArgs := gztest.RequestArgs{Method: "POST", Route: test.URL, Body: jsonBody(t, test.user), SignedToken: jwt}
				gztest.AssertRouteMultipleArgsStruct(reqArgs, expEm.StatusCode, expCt, t)
				return
			}
			var ur users.UserResponse
			assertRequest(t, "POST", test.URL, getJWTToken(t, test.jwtGen), test.user, test.expErrMsg, &ur)
			if test.expErrMsg == nil {
				assert.Equal(t, test.user.Username, ur.Username)
				assert.Zero(t, ur.Rating)
			}
		})
	}
}

// TestUserIndex tests GET /user/{id}.
func TestUserIndex(t *testing.T) {
	setup()
	user := createUser(t)
	other := createUser(t)

	var ur users.UserResponse
	assertRequest(t, "GET", fmt.Sprintf("/1.0/user/%d", user.ID), nil, nil, nil, &ur)
	assert.Equal(t, user.Username, ur.Username)
	assert.Empty(t, ur.Email, "email is private")

	assertRequest(t, "GET", fmt.Sprintf("/1.0/user/%d", user.ID), &other.JWT, nil, nil, &ur)
	assert.Empty(t, ur.Email, "email is private")

	assertRequest(t, "GET", "/1.0/user/123456", nil, nil, gz.NewErrorMessage(gz.ErrorUserUnknown), nil)
	assertRequest(t, "GET", "/1.0/user/abc", nil, nil, gz.NewErrorMessage(gz.ErrorIDWrongFormat), nil)
}

// TestUserUpdate tests PATCH /user/{id}.
func TestUserUpdate(t *testing.T) {
	setup()
	user := createUser(t)
	other := createUser(t)
	admin := createSysAdminUser(t)

	var spain lookups.Country
	assertRequest(t, "POST", "/1.0/admin/countries", &admin.JWT,
		lookups.CountryInput{Name: "Spain", Code: "ES"}, nil, &spain)

	uri := fmt.Sprintf("/1.0/user/%d", user.ID)
	var ur users.UserResponse
	assertRequest(t, "PATCH", uri, &user.JWT,
		users.UpdateUserInput{About: sptr("Hello"), CountryID: &spain.ID}, nil, &ur)
	assert.Equal(t, "Hello", ur.About)
	assert.Equal(t, "Spain", ur.Country)

	unknown := uint(98765)
	assertRequest(t, "PATCH", uri, &user.JWT, users.UpdateUserInput{CountryID: &unknown},
		gz.NewErrorMessage(gz.ErrorFormInvalidValue), nil)
	assertRequest(t, "PATCH", uri, &user.JWT, users.UpdateUserInput{},
		gz.NewErrorMessage(gz.ErrorFormInvalidValue), nil)
	assertRequest(t, "PATCH", uri, &other.JWT, users.UpdateUserInput{About: sptr("Hacked")},
		generics.NewForbiddenError(""), nil)
	// System admins can update any profile
	assertRequest(t, "PATCH", uri, &admin.JWT, users.UpdateUserInput{Name: sptr("Renamed")}, nil, &ur)
	assert.Equal(t, "Renamed", ur.Name)
}

// TestUserIgnore tests the block list routes.
func TestUserIgnore(t *testing.T) {
	setup()
	user := createUser(t)
	other := createUser(t)

	ignoreURI := fmt.Sprintf("/1.0/user/%d/ignore", other.ID)
	assertRequest(t, "POST", ignoreURI, &user.JWT, nil, nil, nil)
	// Ignoring twice is fine
	assertRequest(t, "POST", ignoreURI, &user.JWT, nil, nil, nil)
	assertRequest(t, "POST", fmt.Sprintf("/1.0/user/%d/ignore", user.ID), &user.JWT, nil,
		generics.NewUnprocessableError(nil, nil), nil)

	var list users.UserResponses
	assertRequest(t, "GET", "/1.0/users/ignored", &user.JWT, nil, nil, &list)
	require.Len(t, list, 1)
	assert.Equal(t, other.Username, list[0].Username)
	assert.True(t, list[0].Ignored)

	var ur users.UserResponse
	assertRequest(t, "GET", fmt.Sprintf("/1.0/user/%d", other.ID), &user.JWT, nil, nil, &ur)
	assert.True(t, ur.Ignored)

	assertRequest(t, "DELETE", ignoreURI, &user.JWT, nil, nil, nil)
	assertRequest(t, "DELETE", ignoreURI, &user.JWT, nil, gz.NewErrorMessage(gz.ErrorIDNotFound), nil)
	assertRequest(t, "GET", "/1.0/users/ignored", &user.JWT, nil, nil, &list)
	assert.Empty(t, list)
}

// TestUserList tests GET /users, ranked by rating.
func TestUserList(t *testing.T) {
	setup()
	first := createUser(t)
	second := createUser(t)

	var list users.UserResponses
	assertRequest(t, "GET", "/1.0/users", nil, nil, nil, &list)
	names := []string{}
	for _, u := range list {
		names = append(names, u.Username)
	}
	assert.Contains(t, names, first.Username)
	assert.Contains(t, names, second.Username)
}

// TestIgnoreCreateDbMock tests the ignore route against database failures.
func TestIgnoreCreateDbMock(t *testing.T) {
	setup()

	origDb := globals.Server.Db
	// Make sure to return back to real DB after running this test
	defer SetGlobalDB(origDb)
	defer ClearMockBadCommit()

	mockDb := SetupDbMockCatcher()
	SetGlobalDB(mockDb)
	SetupCommonMockResponses("mockuser")

	uri := "/1.0/user/202/ignore"
	jwt := createValidJWTForIdentity(mockIdentity, t)

	// Bad connection at Begin()
	SetGlobalDB(NewFailAtBeginConn())
	assertRequest(t, "POST", uri, &jwt, nil, gz.NewErrorMessage(gz.ErrorNoDatabase), nil)

	// Failure at commit
	SetGlobalDB(mockDb)
	SetupMockBadCommit()
	assertRequest(t, "POST", uri, &jwt, nil, gz.NewErrorMessage(gz.ErrorDbSave), nil)
}
