package reputation

import (
	"github.com/jinzhu/gorm"
)

const (
	insertEntrySQL = "INSERT INTO reputation_entries " +
		"(sender_id, recipient_id, object_id, relation, rating, comment, created_at, updated_at) " +
		"VALUES (?, ?, ?, ?, ?, ?, ?, ?) "

	mysqlUpsertSQL = insertEntrySQL +
		"ON DUPLICATE KEY UPDATE recipient_id = VALUES(recipient_id), rating = VALUES(rating), " +
		"comment = VALUES(comment), updated_at = VALUES(updated_at)"

	conflictUpsertSQL = insertEntrySQL +
		"ON CONFLICT (sender_id, object_id, relation) DO UPDATE SET recipient_id = excluded.recipient_id, " +
		"rating = excluded.rating, comment = excluded.comment, updated_at = excluded.updated_at"
)

// upsertEntry inserts the given entry or, if the sender already rated the
// same object, overwrites the previous rating. Concurrent votes are
// serialized by the unique index on (sender_id, object_id, relation).
func upsertEntry(tx *gorm.DB, e *Entry) error {
	now := gorm.NowFunc()
	query := conflictUpsertSQL
	if tx.Dialect().GetName() == "mysql" {
		query = mysqlUpsertSQL
	}
	return tx.Exec(query, e.SenderID, e.RecipientID, e.ObjectID, string(e.Relation),
		e.Rating, e.Comment, now, now).Error
}

// countRating counts the entries of an object with the given rating.
func countRating(tx *gorm.DB, objectID uint, rel Relation, rating int) (int, error) {
	var count int
	err := tx.Model(&Entry{}).
		Where("object_id = ? AND relation = ? AND rating = ?", objectID, string(rel), rating).
		Count(&count).Error
	return count, err
}

type countRow struct {
	ObjectID uint
	Positive int
	Negative int
}

// countRatingsFor returns the positive and negative counts of many objects
// of the same relation using a single grouped query.
func countRatingsFor(tx *gorm.DB, rel Relation, ids []uint) ([]countRow, error) {
	var rows []countRow
	err := tx.Table("reputation_entries").
		Select("object_id, "+
			"SUM(CASE WHEN rating > 0 THEN 1 ELSE 0 END) AS positive, "+
			"SUM(CASE WHEN rating < 0 THEN 1 ELSE 0 END) AS negative").
		Where("relation = ? AND object_id IN (?)", string(rel), ids).
		Group("object_id").
		Scan(&rows).Error
	return rows, err
}
