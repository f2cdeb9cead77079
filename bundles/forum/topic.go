package forum

import (
	"fmt"
	"time"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// Topic is a forum thread.
type Topic struct {
	gorm.Model

	SectionID uint `gorm:"not null;index" json:"section_id"`
	AuthorID  uint `gorm:"not null;index" json:"author_id"`

	Title          string `gorm:"not null" json:"title"`
	Content        string `gorm:"type:text" json:"content"`
	PreviewContent string `gorm:"type:text" json:"preview_content"`

	// StartOn hides the topic until the given time
	StartOn  *time.Time `json:"start_on,omitempty"`
	Approved bool       `gorm:"not null;default:true" json:"approved"`

	// News topics are promoted by moderators
	News bool `gorm:"not null;default:false" json:"news"`

	// Reviews is the number of times the topic was viewed
	Reviews int `gorm:"not null;default:0" json:"reviews"`

	// CommentedAt is the time of the last comment, or the creation time
	CommentedAt *time.Time `gorm:"index" json:"commented_at"`
}

// TableName sets the table name of Topic.
func (Topic) TableName() string {
	return "forum_topics"
}

// Topics is an array of Topic
type Topics []Topic

// AfterCreate grants points to the author.
func (t *Topic) AfterCreate(tx *gorm.DB) error {
	return users.UpdatePoints(tx, t.AuthorID, users.TopicPoints)
}

// AfterDelete takes back the points granted to the author.
func (t *Topic) AfterDelete(tx *gorm.DB) error {
	return users.UpdatePoints(tx, t.AuthorID, -users.TopicPoints)
}

// Resource returns the permissions resource name of the topic.
func (t *Topic) Resource() string {
	return fmt.Sprintf("forum_topics/%d", t.ID)
}

// IsVisible returns true if the topic is approved and already started.
func (t *Topic) IsVisible(now time.Time) bool {
	return t.Approved && (t.StartOn == nil || !t.StartOn.After(now))
}

// TopicResponse is a topic decorated with its author and reputation counters.
type TopicResponse struct {
	ID             uint       `json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	SectionID      uint       `json:"section_id"`
	AuthorID       uint       `json:"author_id"`
	AuthorUsername string     `json:"author_username"`
	Title          string     `json:"title"`
	Content        string     `json:"content,omitempty"`
	PreviewContent string     `json:"preview_content"`
	StartOn        *time.Time `json:"start_on,omitempty"`
	Approved       bool       `json:"approved"`
	News           bool       `json:"news"`
	Reviews        int        `json:"reviews"`
	CommentedAt    *time.Time `json:"commented_at"`
	reputation.Counts
}

// TopicResponses is an array of TopicResponse
type TopicResponses []TopicResponse

// CreateTopic encapsulates the data needed to create a topic.
type CreateTopic struct {
	SectionID      uint       `json:"section_id" form:"section_id" validate:"required"`
	Title          string     `json:"title" form:"title" validate:"required,notblank,max=255"`
	Content        string     `json:"content" form:"content" validate:"required,notblank"`
	PreviewContent string     `json:"preview_content,omitempty" form:"preview_content"`
	StartOn        *time.Time `json:"start_on,omitempty" form:"start_on"`
}

// UpdateTopic holds the fields of a topic that can be updated.
type UpdateTopic struct {
	Title          *string    `json:"title,omitempty" form:"title" validate:"omitempty,max=255"`
	Content        *string    `json:"content,omitempty" form:"content"`
	PreviewContent *string    `json:"preview_content,omitempty" form:"preview_content"`
	StartOn        *time.Time `json:"start_on,omitempty" form:"start_on"`
	Approved       *bool      `json:"approved,omitempty" form:"approved"`
}

// ModerateTopic holds the topic flags only moderators can change.
type ModerateTopic struct {
	Approved *bool `json:"approved,omitempty" form:"approved"`
	News     *bool `json:"news,omitempty" form:"news"`
}

// TopicCriteria filters the topics listed to moderators. Zero values do not
// filter.
type TopicCriteria struct {
	// Query matches the title or the content
	Query     string `form:"q"`
	SectionID uint   `form:"section_id"`
	AuthorID  uint   `form:"author_id"`
	Approved  *bool  `form:"approved"`
	News      *bool  `form:"news"`
}

// ModeratedTopic is a topic listed to moderators, with its comment count.
type ModeratedTopic struct {
	TopicResponse
	CommentCount int `json:"comment_count"`
}

// ModeratedTopics is an array of ModeratedTopic
type ModeratedTopics []ModeratedTopic

// RebaseTopic is the input used to move a topic to another section.
type RebaseTopic struct {
	SectionID uint `json:"section_id" form:"section_id" validate:"required"`
}

// TopicByID returns an active topic, visible or not.
func TopicByID(tx *gorm.DB, id uint) (*Topic, *gz.ErrMsg) {
	var t Topic
	if err := tx.Where("id = ?", id).First(&t).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, gz.NewErrorMessageWithArgs(gz.ErrorIDNotFound, err, []string{fmt.Sprint(id)})
		}
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	return &t, nil
}

// Owner returns the author of the topic with the given id. Topics that are
// not visible yet cannot be rated nor commented, so they are not found.
func Owner(tx *gorm.DB, id uint) (uint, *gz.ErrMsg) {
	t, em := TopicByID(tx, id)
	if em != nil {
		return 0, em
	}
	if !t.IsVisible(gorm.NowFunc()) {
		return 0, gz.NewErrorMessageWithArgs(gz.ErrorIDNotFound, nil, []string{fmt.Sprint(id)})
	}
	return t.AuthorID, nil
}
