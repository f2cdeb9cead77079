package gallery

import (
	"fmt"
	"time"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// Item is an image uploaded to a user gallery.
type Item struct {
	gorm.Model

	AuthorID uint `gorm:"not null;index" json:"author_id"`

	// FileKey is the storage key of the image
	FileKey string `gorm:"not null" json:"-"`
	FileURL string `json:"file_url"`

	Caption   string `gorm:"type:text" json:"caption"`
	ForAdults bool   `gorm:"not null;default:false" json:"for_adults"`
}

// TableName sets the table name of Item.
func (Item) TableName() string {
	return "user_galleries"
}

// Items is an array of Item
type Items []Item

// AfterCreate grants points to the author.
func (i *Item) AfterCreate(tx *gorm.DB) error {
	return users.UpdatePoints(tx, i.AuthorID, users.GalleryPoints)
}

// AfterDelete takes back the points granted to the author.
func (i *Item) AfterDelete(tx *gorm.DB) error {
	return users.UpdatePoints(tx, i.AuthorID, -users.GalleryPoints)
}

// Resource returns the permissions resource name of the item.
func (i *Item) Resource() string {
	return fmt.Sprintf("user_galleries/%d", i.ID)
}

// ItemResponse is a gallery item decorated with its author and reputation
// counters. PrevID and NextID link to the neighbour items of the same author
// and are only set for single item responses.
type ItemResponse struct {
	ID             uint      `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	AuthorID       uint      `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	FileURL        string    `json:"file_url"`
	Caption        string    `json:"caption"`
	ForAdults      bool      `json:"for_adults"`
	PrevID         *uint     `json:"prev_id,omitempty"`
	NextID         *uint     `json:"next_id,omitempty"`
	reputation.Counts
}

// ItemResponses is an array of ItemResponse
type ItemResponses []ItemResponse

// CreateItem holds the form fields sent together with an uploaded image.
type CreateItem struct {
	Caption   string `json:"caption" form:"caption" validate:"max=2000"`
	ForAdults bool   `json:"for_adults" form:"for_adults"`
}

// UpdateItem holds the fields of an item that can be updated.
type UpdateItem struct {
	Caption   *string `json:"caption,omitempty" form:"caption" validate:"omitempty,max=2000"`
	ForAdults *bool   `json:"for_adults,omitempty" form:"for_adults"`
}

// ByID returns an active gallery item.
func ByID(tx *gorm.DB, id uint) (*Item, *gz.ErrMsg) {
	var item Item
	if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, gz.NewErrorMessageWithArgs(gz.ErrorIDNotFound, err, []string{fmt.Sprint(id)})
		}
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	return &item, nil
}

// Owner returns the author of the gallery item with the given id.
func Owner(tx *gorm.DB, id uint) (uint, *gz.ErrMsg) {
	item, em := ByID(tx, id)
	if em != nil {
		return 0, em
	}
	return item.AuthorID, nil
}
