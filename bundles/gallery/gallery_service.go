package gallery

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/comments"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/generics"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/permissions"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// Service is the main struct exported by this Gallery Service.
type Service struct {
	Reputation  *reputation.Service
	Comments    *comments.Service
	Permissions *permissions.Permissions
	// Storage is nil when no bucket is configured. Uploads are then rejected.
	Storage Storage
}

// Owner returns the author of a gallery item. Together with Commented it
// makes the Service a comments.Target.
func (gs *Service) Owner(tx *gorm.DB, id uint) (uint, *gz.ErrMsg) {
	return Owner(tx, id)
}

// Commented does nothing. Gallery items do not track comment activity.
func (gs *Service) Commented(tx *gorm.DB, id uint) error {
	return nil
}

func (gs *Service) canEdit(user *users.User, item *Item) (bool, *gz.ErrMsg) {
	if user == nil || user.Username == nil {
		return false, nil
	}
	if user.ID == item.AuthorID {
		return true, nil
	}
	return gs.Permissions.CanWrite(*user.Username, item.Resource())
}

// checkBlocked returns a forbidden error if the requestor and the author
// block each other. Anonymous requestors are never blocked.
func checkBlocked(tx *gorm.DB, requestor *users.User, authorID uint) *gz.ErrMsg {
	if requestor == nil {
		return nil
	}
	blocked, err := users.IsBlocked(tx, requestor.ID, authorID)
	if err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	if blocked {
		return generics.NewForbiddenError("user is blocked")
	}
	return nil
}

// fileKey returns a new unique storage key for an image of the given user.
func fileKey(authorID uint, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("gallery/%d/%s%s", authorID, uuid.NewV4().String(), ext)
}

// CreateItem uploads an image and creates a gallery item for it.
func (gs *Service) CreateItem(ctx context.Context, tx *gorm.DB, author *users.User, f io.Reader,
	filename, contentType string, ci *CreateItem) (*ItemResponse, *gz.ErrMsg) {

	if author == nil {
		return nil, gz.NewErrorMessage(gz.ErrorAuthNoUser)
	}
	if author.IsBan {
		return nil, generics.NewForbiddenError("user is banned")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, generics.NewUnprocessableError(nil, []string{"file:" + contentType})
	}
	if gs.Storage == nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorUnexpected, errors.New("gallery storage is not configured"))
	}

	key := fileKey(author.ID, filename)
	url, err := gs.Storage.Upload(ctx, f, key, contentType)
	if err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorUnexpected, err)
	}

	item := Item{
		AuthorID:  author.ID,
		FileKey:   key,
		FileURL:   url,
		Caption:   ci.Caption,
		ForAdults: ci.ForAdults,
	}
	if err := tx.Create(&item).Error; err != nil {
		gs.removeFile(ctx, key)
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	if ok, em := gs.Permissions.AddPermission(*author.Username, item.Resource(), permissions.Write); !ok {
		return nil, em
	}

	gz.LoggerFromContext(ctx).Info("Gallery item created. ID=", item.ID, " Author=", author.ID, " Key=", key)
	responses, em := gs.createResponses(tx, Items{item})
	if em != nil {
		return nil, em
	}
	return &(*responses)[0], nil
}

// GetItem returns a gallery item with the ids of the previous and next items
// of the same author.
func (gs *Service) GetItem(tx *gorm.DB, id uint, requestor *users.User) (*ItemResponse, *gz.ErrMsg) {
	item, em := ByID(tx, id)
	if em != nil {
		return nil, em
	}
	if em := checkBlocked(tx, requestor, item.AuthorID); em != nil {
		return nil, em
	}

	responses, em := gs.createResponses(tx, Items{*item})
	if em != nil {
		return nil, em
	}
	r := &(*responses)[0]

	var prev, next Item
	err := tx.Select("id").Where("author_id = ? AND id < ?", item.AuthorID, item.ID).Order("id desc").First(&prev).Error
	if err == nil {
		r.PrevID = &prev.ID
	} else if !gorm.IsRecordNotFoundError(err) {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	err = tx.Select("id").Where("author_id = ? AND id > ?", item.AuthorID, item.ID).Order("id asc").First(&next).Error
	if err == nil {
		r.NextID = &next.ID
	} else if !gorm.IsRecordNotFoundError(err) {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	return r, nil
}

// ItemList returns all the gallery items, newest first. Items of users
// blocking (or blocked by) the requestor are left out.
func (gs *Service) ItemList(p *gz.PaginationRequest, tx *gorm.DB,
	requestor *users.User) (*ItemResponses, *gz.PaginationResult, *gz.ErrMsg) {

	q := tx.Model(&Item{})
	if requestor != nil {
		q = q.Where("author_id NOT IN (SELECT ignored_user_id FROM ignore_users WHERE user_id = ?)", requestor.ID).
			Where("author_id NOT IN (SELECT user_id FROM ignore_users WHERE ignored_user_id = ?)", requestor.ID)
	}
	return gs.paginate(p, tx, q.Order("created_at desc, id desc"))
}

// UserItems returns the gallery of a user, newest first.
func (gs *Service) UserItems(p *gz.PaginationRequest, tx *gorm.DB, userID uint,
	requestor *users.User) (*ItemResponses, *gz.PaginationResult, *gz.ErrMsg) {

	if _, em := users.ByID(tx, userID); em != nil {
		return nil, nil, em
	}
	if em := checkBlocked(tx, requestor, userID); em != nil {
		return nil, nil, em
	}
	q := tx.Model(&Item{}).Where("author_id = ?", userID).Order("created_at desc, id desc")
	return gs.paginate(p, tx, q)
}

// UpdateItem updates the caption of a gallery item.
func (gs *Service) UpdateItem(ctx context.Context, tx *gorm.DB, id uint, ui *UpdateItem,
	user *users.User) (*ItemResponse, *gz.ErrMsg) {

	item, em := ByID(tx, id)
	if em != nil {
		return nil, em
	}
	if ok, em := gs.canEdit(user, item); em != nil {
		return nil, em
	} else if !ok {
		return nil, generics.NewForbiddenError("only the author can update a gallery item")
	}

	fields := map[string]interface{}{}
	if ui.Caption != nil {
		fields["caption"] = *ui.Caption
	}
	if ui.ForAdults != nil {
		fields["for_adults"] = *ui.ForAdults
	}
	if len(fields) > 0 {
		if err := tx.Model(item).Updates(fields).Error; err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
		}
	}
	gz.LoggerFromContext(ctx).Info("Gallery item updated. ID=", item.ID, " By=", user.ID)

	responses, em := gs.createResponses(tx, Items{*item})
	if em != nil {
		return nil, em
	}
	return &(*responses)[0], nil
}

// RemoveItem removes a gallery item, its comments and all the reputation
// entries of both. The stored image is kept until ItemRemoved is called
// once the transaction is committed.
func (gs *Service) RemoveItem(ctx context.Context, tx *gorm.DB, id uint, user *users.User) (*Item, *gz.ErrMsg) {
	item, em := ByID(tx, id)
	if em != nil {
		return nil, em
	}
	if ok, em := gs.canEdit(user, item); em != nil {
		return nil, em
	} else if !ok {
		return nil, generics.NewForbiddenError("only the author can remove a gallery item")
	}

	if _, em := gs.Comments.DeleteForObject(tx, reputation.RelationUserGallery, item.ID); em != nil {
		return nil, em
	}
	if _, err := gs.Reputation.DeleteForObject(tx, item.ID, reputation.RelationUserGallery); err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbDelete, err)
	}
	if err := tx.Delete(item).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbDelete, err)
	}

	gz.LoggerFromContext(ctx).Info("Gallery item removed. ID=", item.ID, " By=", user.ID)
	return item, nil
}

// ItemRemoved removes the stored image and the permissions of an item whose
// removal was committed.
func (gs *Service) ItemRemoved(ctx context.Context, item *Item) {
	gs.Permissions.RemoveResource(item.Resource())
	gs.removeFile(ctx, item.FileKey)
}

// removeFile removes a stored image. Failures are only logged, a dangling
// file does not break the gallery.
func (gs *Service) removeFile(ctx context.Context, key string) {
	if gs.Storage == nil {
		return
	}
	if err := gs.Storage.Remove(ctx, key); err != nil {
		gz.LoggerFromContext(ctx).Error("Error removing gallery file ", key, ":", err)
	}
}

func (gs *Service) paginate(p *gz.PaginationRequest, tx *gorm.DB,
	q *gorm.DB) (*ItemResponses, *gz.PaginationResult, *gz.ErrMsg) {

	var items Items
	pagination, err := gz.PaginateQuery(q, &items, *p)
	if err != nil {
		return nil, nil, gz.NewErrorMessageWithBase(gz.ErrorInvalidPaginationRequest, err)
	}
	if !pagination.PageFound {
		return nil, nil, gz.NewErrorMessage(gz.ErrorPaginationPageNotFound)
	}
	responses, em := gs.createResponses(tx, items)
	if em != nil {
		return nil, nil, em
	}
	return responses, pagination, nil
}

func (gs *Service) createResponses(tx *gorm.DB, items Items) (*ItemResponses, *gz.ErrMsg) {
	ids := make([]uint, 0, len(items))
	authorIDs := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
		authorIDs = append(authorIDs, item.AuthorID)
	}
	counts, err := gs.Reputation.CountsFor(tx, reputation.RelationUserGallery, ids)
	if err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}

	usernames := map[uint]string{}
	if len(authorIDs) > 0 {
		var authors users.Users
		if err := tx.Unscoped().Where("id IN (?)", authorIDs).Find(&authors).Error; err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
		}
		for _, a := range authors {
			usernames[a.ID] = *a.Username
		}
	}

	responses := ItemResponses{}
	for _, item := range items {
		responses = append(responses, ItemResponse{
			ID:             item.ID,
			CreatedAt:      item.CreatedAt,
			AuthorID:       item.AuthorID,
			AuthorUsername: usernames[item.AuthorID],
			FileURL:        item.FileURL,
			Caption:        item.Caption,
			ForAdults:      item.ForAdults,
			Counts:         counts[item.ID],
		})
	}
	return &responses, nil
}
