package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/forum"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/cmd/token-generator/generator"
	"github.com/IamWorkDev/yevhen-k-laravel/globals"
	"github.com/dgrijalva/jwt-go"
	"github.com/gazebo-web/gz-go/v7"
	gztest "github.com/gazebo-web/gz-go/v7/testhelpers"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test utilities and some mocks

const (
	apiVersion  string = "1.0"
	ctTextPlain string = "text/plain; charset=utf-8"
	ctJSON      string = "application/json"
)

// sptr returns a pointer to a given string.
// This function is specially useful when using string literals as argument.
func sptr(s string) *string {
	return &s
}

// bptr returns a pointer to a given bool.
func bptr(b bool) *bool {
	return &b
}

// errMsgAndContentType is a helper that given an optional errMsg and a content type to use
// when OK (ie. http status code 200), it returns a tuple with the ErrMsg and contentType to use
// in a subsequent call to 'gztest.AssertRouteMultipleArgsStruct'.
// It was created to reduce LOC.
func errMsgAndContentType(em *gz.ErrMsg, successCT string) (gz.ErrMsg, string) {
	if em != nil {
		return *em, ctTextPlain
	}
	return gz.ErrorMessageOK(), successCT
}

// setup helper function
func setup() {
	setupWithCustomInitalizer(nil)
}

type customInitializer func(ctx context.Context)

// setup helper function
func setupWithCustomInitalizer(customFn customInitializer) {
	logger := gz.NewLoggerNoRollbar("test", gz.VerbosityDebug)
	logCtx := gz.NewContextWithLogger(context.Background(), logger)
	// Make sure we don't have data from other tests.
	// For this we drop db tables and recreate them.
	packageTearDown(logCtx)
	DBAddDefaultData(logCtx, globals.Server.Db)

	if customFn != nil {
		customFn(logCtx)
	}

	if os.Getenv("TOKEN_GENERATOR_PRIVATE_RSA256_KEY") == "" {
		logger.Info("Missing TOKEN_GENERATOR_PRIVATE_RSA256_KEY env variable. " +
			"Authentication will not work.")
	}

	// Create the router, and indicate that we are testing
	gztest.SetupTest(globals.Server.Router)
}

// uriTest is the base of most route test cases.
type uriTest struct {
	// description of the test
	testDesc string
	// a url (eg. /1.0/forum/topic/1)
	URL string
	// an optional JWT definition (can contain a plain jwt or a claims map)
	jwtGen *testJWT
	// optional expected gz.ErrMsg response. If the test case represents an error case
	// in such case, content type text/plain will be used
	expErrMsg *gz.ErrMsg
	// in case of error response, whether to parse the response body to get an gz.ErrMsg struct
	ignoreErrorBody bool
}

//////////////
/// Utility functions to create tokens and users
//////////////

// testJWT is either a explicit jwt token , or a map of jwtClaims
// used to generate a jwt token (using the TOKEN_GENERATOR_PRIVATE_RSA256_KEY env var)
type testJWT struct {
	jwt       *string
	jwtClaims *jwt.MapClaims
}

// newClaimsJWT creates a testJWT definition using a map of claims
func newClaimsJWT(cl *jwt.MapClaims) *testJWT {
	return &testJWT{jwtClaims: cl}
}

// newJWT creates a new testJWT definition based on a given string token.
func newJWT(tk string) *testJWT {
	return &testJWT{jwt: &tk}
}

// getJWTToken - given an optional testJWT it creates and returns a token (or nil).
func getJWTToken(t *testing.T, jwtDef *testJWT) *string {
	if jwtDef != nil {
		s := generateJWT(*jwtDef, t)
		return &s
	}
	return nil
}

// generateJWT creates a JWT given a testJWT struct.
func generateJWT(jwt testJWT, t *testing.T) string {
	if jwt.jwt != nil {
		return *jwt.jwt
	}
	pem := generator.PEMFromKey(os.Getenv("TOKEN_GENERATOR_PRIVATE_RSA256_KEY"))
	token, err := generator.GenerateTokenRSA256(pem, *jwt.jwtClaims)
	assert.NoError(t, err, "Error while generating token")
	return token
}

// Generate a new test JWT token with the given identity.
func createValidJWTForIdentity(identity string, t *testing.T) string {
	claims := generator.IdentityClaims(identity, 0)
	return generateJWT(testJWT{jwtClaims: &claims}, t)
}

// testUser is a registered user together with the token used to act as it.
type testUser struct {
	ID       uint
	Username string
	JWT      string
}

// jwtDef returns the testJWT of the user.
func (u *testUser) jwtDef() *testJWT {
	return newJWT(u.JWT)
}

// Create a random user for testing purposes
func createUser(t *testing.T) *testUser {
	username := "u" + strings.Replace(uuid.NewV4().String(), "-", "", -1)[:8]
	return createNamedUser(t, username)
}

// Create a user that will act as sysadmin during testing.
func createSysAdminUser(t *testing.T) *testUser {
	return createNamedUser(t, sysAdminForTest)
}

// createNamedUser registers a user with the given username. The identity
// of the JWT is derived from the username.
func createNamedUser(t *testing.T, username string) *testUser {
	token := createValidJWTForIdentity(username+"-identity", t)
	u := users.CreateUserInput{Username: username, Name: sptr("A random user"),
		Email: username + "@example.com"}
	b := new(bytes.Buffer)
	json.NewEncoder(b).Encode(u)

	req, _ := http.NewRequest("POST", "/1.0/users", b)
	req.Header.Add("Content-Type", "application/json")

	// Add the authorization token
	req.Header.Set("Authorization", "Bearer "+token)

	respRec := httptest.NewRecorder()
	globals.Server.Router.ServeHTTP(respRec, req)

	// Make sure the status code is correct
	require.Equal(t, http.StatusOK, respRec.Code, "Server error: returned [%d] instead of [%d] with body [%s]", respRec.Code, http.StatusOK, respRec.Body)

	// Check CORS
	accessControlHeaders := respRec.Header().Get("Access-Control-Allow-Headers")
	assert.Contains(t, accessControlHeaders, "Authorization", "Access-Control-Allow-Headers missing Authorization")
	accessControlOrigin := respRec.Header().Get("Access-Control-Allow-Origin")
	assert.Equal(t, "*", accessControlOrigin, "Access-Control-Allow-Origin != '*'")
	// end check CORS

	var userResponse users.UserResponse
	require.NoError(t, json.NewDecoder(respRec.Body).Decode(&userResponse))
	assert.Equal(t, username, userResponse.Username, "Expected username[%s] != response username[%s]", username, userResponse.Username)
	return &testUser{ID: userResponse.ID, Username: username, JWT: token}
}

// dbGetUserByID reads a user directly from the DB.
func dbGetUserByID(id uint) *users.User {
	var user users.User
	globals.Server.Db.Where("id = ?", id).First(&user)
	if user.Username == nil {
		return nil
	}
	return &user
}

//////////////
/// Helpers to send requests
//////////////

// jsonBody encodes v as a request body. A nil v returns a nil body.
func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	if v == nil {
		return nil
	}
	b := new(bytes.Buffer)
	require.NoError(t, json.NewEncoder(b).Encode(v))
	return b
}

// assertRequest sends a request and asserts the response status and error
// code. If out is not nil and the request succeeded the response body is
// decoded into it.
func assertRequest(t *testing.T, method, uri string, jwt *string, body interface{},
	expErrMsg *gz.ErrMsg, out interface{}) {

	expEm, expCt := errMsgAndContentType(expErrMsg, ctJSON)
	expStatus := expEm.StatusCode
	reqArgs := gztest.RequestArgs{Method: method, Route: uri, Body: jsonBody(t, body), SignedToken: jwt}
	resp := gztest.AssertRouteMultipleArgsStruct(reqArgs, expStatus, expCt, t)
	bslice := resp.BodyAsBytes
	require.Equal(t, expStatus, resp.RespRecorder.Code, "Unexpected response body [%s]", string(*bslice))
	if expStatus != http.StatusOK {
		gztest.AssertBackendErrorCode(t.Name()+" "+method+" "+uri, bslice, expEm.ErrCode, t)
		return
	}
	if out != nil {
		assert.NoError(t, json.Unmarshal(*bslice, out), "Unable to unmarshal response %s", string(*bslice))
	}
}

// generalSection returns the default forum section.
func generalSection(t *testing.T) forum.Section {
	var s forum.Section
	require.NoError(t, globals.Server.Db.Where("is_general = ?", true).First(&s).Error)
	return s
}

// createTopic creates a topic in the given section as the given user.
func createTopic(t *testing.T, u *testUser, sectionID uint, title string) forum.TopicResponse {
	var topic forum.TopicResponse
	in := forum.CreateTopic{SectionID: sectionID, Title: title, Content: "Content of " + title}
	assertRequest(t, "POST", "/1.0/forum/topic", &u.JWT, in, nil, &topic)
	require.NotZero(t, topic.ID)
	return topic
}

// vote sends a vote on the object at base (eg. /1.0/forum/topic/1).
func vote(t *testing.T, u *testUser, base string, rating int, expErrMsg *gz.ErrMsg) {
	uri := fmt.Sprintf("%s/set_rating", base)
	assertRequest(t, "POST", uri, &u.JWT, map[string]interface{}{"rating": rating}, expErrMsg, nil)
}
