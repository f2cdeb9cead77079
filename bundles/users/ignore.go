package users

import (
	"time"

	"github.com/jinzhu/gorm"
)

// IgnoreUser is an entry of a user's block list. While the entry exists
// neither user can rate the other or browse the other's gallery.
type IgnoreUser struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID        uint `gorm:"not null;unique_index:idx_user_ignored" json:"user_id"`
	IgnoredUserID uint `gorm:"not null;unique_index:idx_user_ignored;index" json:"ignored_user_id"`
}

// IgnoredUsers is a slice of IgnoreUser
type IgnoredUsers []IgnoreUser

// IsBlocked returns true if a ignores b or b ignores a.
func IsBlocked(tx *gorm.DB, a, b uint) (bool, error) {
	var count int
	q := tx.Model(&IgnoreUser{}).
		Where("(user_id = ? AND ignored_user_id = ?) OR (user_id = ? AND ignored_user_id = ?)", a, b, b, a)
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ignores returns true if user ignores other. Unlike IsBlocked the check is
// one-directional.
func Ignores(tx *gorm.DB, user, other uint) (bool, error) {
	var count int
	q := tx.Model(&IgnoreUser{}).Where("user_id = ? AND ignored_user_id = ?", user, other)
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
