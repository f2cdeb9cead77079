package comments

import (
	"fmt"
	"time"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// Comment is a message posted on a forum topic or a gallery item.
type Comment struct {
	gorm.Model

	AuthorID uint `gorm:"not null;index" json:"author_id"`

	ObjectID uint                `gorm:"not null;index:idx_comment_object" json:"object_id"`
	Relation reputation.Relation `gorm:"type:varchar(32);not null;index:idx_comment_object" json:"relation"`

	Content string `gorm:"type:text;not null" json:"content"`
}

// Comments is a slice of Comment
type Comments []Comment

// AfterCreate grants points to the author.
func (c *Comment) AfterCreate(tx *gorm.DB) error {
	return users.UpdatePoints(tx, c.AuthorID, users.CommentPoints)
}

// AfterDelete takes back the points granted to the author.
func (c *Comment) AfterDelete(tx *gorm.DB) error {
	return users.UpdatePoints(tx, c.AuthorID, -users.CommentPoints)
}

// Resource returns the permissions resource name of the comment.
func (c *Comment) Resource() string {
	return fmt.Sprintf("comments/%d", c.ID)
}

// CommentResponse is a comment decorated with its author and reputation
// counters.
type CommentResponse struct {
	ID             uint                `json:"id"`
	CreatedAt      time.Time           `json:"created_at"`
	AuthorID       uint                `json:"author_id"`
	AuthorUsername string              `json:"author_username"`
	ObjectID       uint                `json:"object_id"`
	Relation       reputation.Relation `json:"relation"`
	Content        string              `json:"content"`
	reputation.Counts
}

// CommentResponses is a slice of CommentResponse
type CommentResponses []CommentResponse

// CreateComment is the input used to post a comment.
type CreateComment struct {
	Content string `json:"content" form:"content" validate:"required,notblank,max=10000"`
}

// ByID returns an active comment.
func ByID(tx *gorm.DB, id uint) (*Comment, *gz.ErrMsg) {
	var c Comment
	if err := tx.Where("id = ?", id).First(&c).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, gz.NewErrorMessageWithArgs(gz.ErrorIDNotFound, err, []string{fmt.Sprint(id)})
		}
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	return &c, nil
}

// Owner returns the author of the comment with the given id. It is the
// reputation resolver of comments.
func Owner(tx *gorm.DB, id uint) (uint, *gz.ErrMsg) {
	c, em := ByID(tx, id)
	if em != nil {
		return 0, em
	}
	return c.AuthorID, nil
}
