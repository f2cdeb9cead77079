package main

import (
	"database/sql"
	"database/sql/driver"

	"github.com/IamWorkDev/yevhen-k-laravel/globals"
	mocket "github.com/Selvatico/go-mocket"
	"github.com/jinzhu/gorm"
)

const (
	DriverFailAtBegin = "FAIL_AT_BEGIN_FAKE_DRIVER"
	// mockIdentity is the identity of the user returned by the mocked users
	// table.
	mockIdentity = "test-user-identity"
)

// SetGlobalDB is a helper function to change the global DB used
// by the server.
func SetGlobalDB(db *gorm.DB) {
	globals.Server.Db = db
}

// SetupDbMockCatcher registers custom DB drivers that support mocks
func SetupDbMockCatcher() *gorm.DB {
	mocket.Catcher.Register()
	RegisterFailAtBeginDriver()

	mocket.Catcher.Logging = false
	mockDb, _ := gorm.Open(mocket.DRIVER_NAME, "any_string")
	return mockDb
}

// SetupCommonMockResponses initializes the mocked users table with a single
// user, returned by every users query.
func SetupCommonMockResponses(username string) {
	commonUserReply := []map[string]interface{}{
		{"id": "101", "username": username, "identity": mockIdentity, "name": username},
	}

	mocket.Catcher.Reset()
	mocket.Catcher.Attach([]*mocket.FakeResponse{
		{
			Pattern:  "SELECT * FROM \"users\"  WHERE",
			Response: commonUserReply,
			Once:     false,
		},
	})
}

// SetupMockBadCommit configures the DB mock fail on transaction Commit().
func SetupMockBadCommit() {
	mocket.HookBadCommit = func() bool { return true }
}

// ClearMockBadCommit removes the bad commit hook
func ClearMockBadCommit() {
	mocket.HookBadCommit = nil
}

// NewFailAtBeginConn opens and returns a FailAtBegin fake database to be
// used with GORM.
func NewFailAtBeginConn() *gorm.DB {
	c, _ := gorm.Open(DriverFailAtBegin, "any_string")
	return c
}

// FailAtBeginFakeDriver is a fake driver to create DB connections
// that will fail when Begin() is called on them
type FailAtBeginFakeDriver struct {
}

// RegisterFailAtBeginDriver registers a custom driver to be used by sql package.
func RegisterFailAtBeginDriver() {
	for _, name := range sql.Drivers() {
		if name == DriverFailAtBegin {
			return
		}
	}
	sql.Register(DriverFailAtBegin, FailAtBeginFakeDriver{})
}

// FailAtBeginFakeConn is a fake connection that fails on each call to Begin().
type FailAtBeginFakeConn struct {
	*mocket.FakeConn
}

// Open returns a new (fake) connection to the database.
func (d FailAtBeginFakeDriver) Open(database string) (driver.Conn, error) {
	return &FailAtBeginFakeConn{}, nil
}

// Begin func just returns an driver.ErrBadConn error.
func (c *FailAtBeginFakeConn) Begin() (driver.Tx, error) {
	return nil, driver.ErrBadConn
}

// Close func just returns success.
func (c *FailAtBeginFakeConn) Close() (err error) {
	return nil
}
