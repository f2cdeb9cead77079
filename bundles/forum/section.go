package forum

import (
	"fmt"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/gosimple/slug"
	"github.com/jinzhu/gorm"
)

// Section groups forum topics.
type Section struct {
	gorm.Model

	// Name is the unique name of the section
	Name *string `gorm:"not null;unique" json:"name"`

	// Title is the human readable title
	Title string `json:"title"`

	// Slug is the human-friendly URL path to the section
	Slug *string `gorm:"not null;unique" json:"slug"`

	Description string `gorm:"type:text" json:"description"`

	// Position orders sections in listings
	Position int `gorm:"not null;default:0" json:"position"`

	IsActive  bool `gorm:"not null;default:true" json:"is_active"`
	IsGeneral bool `gorm:"not null;default:false" json:"is_general"`

	// UserCanAddTopics is false for sections where only moderators post
	UserCanAddTopics bool `gorm:"not null;default:true" json:"user_can_add_topics"`
}

// TableName sets the table name of Section.
func (Section) TableName() string {
	return "forum_sections"
}

// Sections is an array of Section
type Sections []Section

// CreateSection encapsulates the data needed to create a section.
type CreateSection struct {
	Name        string `json:"name" form:"name" validate:"required,min=2,max=64,notinblacklist"`
	Title       string `json:"title" form:"title" validate:"required,max=255"`
	Slug        string `json:"slug,omitempty" form:"slug" validate:"omitempty,max=64,noforwardslash,nopercent"`
	Description string `json:"description,omitempty" form:"description"`
	Position    int    `json:"position,omitempty" form:"position" validate:"min=0"`
	IsActive    *bool  `json:"is_active,omitempty" form:"is_active"`
	IsGeneral   bool   `json:"is_general,omitempty" form:"is_general"`

	// Defaults to true
	UserCanAddTopics *bool `json:"user_can_add_topics,omitempty" form:"user_can_add_topics"`
}

// UpdateSection holds the fields of a section that can be updated.
type UpdateSection struct {
	Title       *string `json:"title,omitempty" form:"title" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" form:"description"`
	Position    *int    `json:"position,omitempty" form:"position" validate:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active,omitempty" form:"is_active"`
	IsGeneral   *bool   `json:"is_general,omitempty" form:"is_general"`

	UserCanAddTopics *bool `json:"user_can_add_topics,omitempty" form:"user_can_add_topics"`
}

// SectionTopics is a section with its latest topics.
type SectionTopics struct {
	Section Section        `json:"section"`
	Topics  TopicResponses `json:"topics"`
}

// sectionSlug returns the slug of a new section. The name is used when no
// slug is given.
func sectionSlug(cs *CreateSection) string {
	if cs.Slug != "" {
		return slug.Make(cs.Slug)
	}
	return slug.Make(cs.Name)
}

// SectionByID returns a section, active or not.
func SectionByID(tx *gorm.DB, id uint) (*Section, *gz.ErrMsg) {
	var s Section
	if err := tx.Where("id = ?", id).First(&s).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, gz.NewErrorMessageWithArgs(gz.ErrorIDNotFound, err, []string{fmt.Sprint(id)})
		}
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	return &s, nil
}

// SectionBySlug returns a section by the given slug.
func SectionBySlug(tx *gorm.DB, s string) (*Section, *gz.ErrMsg) {
	var section Section
	if err := tx.Where("slug = ?", s).First(&section).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, gz.NewErrorMessageWithArgs(gz.ErrorNameNotFound, err, []string{s})
		}
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	return &section, nil
}
