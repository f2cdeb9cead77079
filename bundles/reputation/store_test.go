package reputation

import (
	"testing"

	mocket "github.com/Selvatico/go-mocket"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDbMockCatcher(t *testing.T) *gorm.DB {
	mocket.Catcher.Register()
	mocket.Catcher.Logging = false
	mocket.Catcher.Reset()
	db, _ := gorm.Open(mocket.DRIVER_NAME, "any_string")
	require.NotNil(t, db)
	t.Cleanup(func() {
		mocket.Catcher.Reset()
		db.Close()
	})
	return db
}

func TestUpsertEntryUsesConflictClause(t *testing.T) {
	db := setupDbMockCatcher(t)
	mocket.Catcher.NewMock().WithQuery("ON CONFLICT (sender_id, object_id, relation) DO UPDATE").WithExecException()

	err := upsertEntry(db, &Entry{SenderID: 1, RecipientID: 2, ObjectID: 3, Relation: RelationComment, Rating: Positive})
	assert.Error(t, err)
}

func TestUpsertEntryExecFailure(t *testing.T) {
	db := setupDbMockCatcher(t)
	mocket.Catcher.NewMock().WithQuery("INSERT INTO reputation_entries").WithExecException()

	err := upsertEntry(db, &Entry{SenderID: 1, RecipientID: 2, ObjectID: 3, Relation: RelationComment, Rating: Negative})
	assert.Error(t, err)

	// Without failure mocks the statement goes through
	mocket.Catcher.Reset()
	err = upsertEntry(db, &Entry{SenderID: 1, RecipientID: 2, ObjectID: 3, Relation: RelationComment, Rating: Negative})
	assert.NoError(t, err)
}
