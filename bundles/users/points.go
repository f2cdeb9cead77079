package users

import (
	"github.com/jinzhu/gorm"
)

// Points granted to (or taken from) an author when content is created (or
// deleted).
const (
	TopicPoints   = 1
	GalleryPoints = 1
	CommentPoints = 1
)

// UpdatePoints adds delta to the points of the given user. It is meant to be
// called from the gorm callbacks of authored content. A zero userID is ignored.
func UpdatePoints(tx *gorm.DB, userID uint, delta int) error {
	if userID == 0 || delta == 0 {
		return nil
	}
	return tx.Model(&User{}).Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", delta)).Error
}
