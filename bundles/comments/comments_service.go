package comments

import (
	"context"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/generics"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/permissions"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// Target is an object that can be commented.
type Target interface {
	reputation.ObjectResolver
	// Commented is called, within the same transaction, after a comment is
	// posted on the object with the given id.
	Commented(tx *gorm.DB, id uint) error
}

// Service is the main struct exported by this Comments Service.
type Service struct {
	Reputation  *reputation.Service
	Permissions *permissions.Permissions
	targets     map[reputation.Relation]Target
}

// NewService creates a comments Service.
func NewService(rep *reputation.Service, p *permissions.Permissions) *Service {
	return &Service{
		Reputation:  rep,
		Permissions: p,
		targets:     make(map[reputation.Relation]Target),
	}
}

// RegisterTarget allows comments on objects of the given relation.
func (cs *Service) RegisterTarget(rel reputation.Relation, t Target) {
	cs.targets[rel] = t
}

func (cs *Service) target(rel reputation.Relation) (Target, *gz.ErrMsg) {
	t, ok := cs.targets[rel]
	if !ok {
		return nil, generics.NewUnprocessableError(nil, []string{"relation:" + rel.String()})
	}
	return t, nil
}

// CreateComment posts a comment on an object. Users blocked by the owner of
// the object (or blocking it) cannot comment.
func (cs *Service) CreateComment(ctx context.Context, tx *gorm.DB, author *users.User,
	rel reputation.Relation, objectID uint, cc *CreateComment) (*Comment, *gz.ErrMsg) {

	if author == nil {
		return nil, gz.NewErrorMessage(gz.ErrorAuthNoUser)
	}
	if author.IsBan {
		return nil, generics.NewForbiddenError("user is banned")
	}
	t, em := cs.target(rel)
	if em != nil {
		return nil, em
	}
	owner, em := t.Owner(tx, objectID)
	if em != nil {
		return nil, em
	}
	blocked, err := users.IsBlocked(tx, author.ID, owner)
	if err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	if blocked {
		return nil, generics.NewForbiddenError("user is blocked")
	}

	c := Comment{
		AuthorID: author.ID,
		ObjectID: objectID,
		Relation: rel,
		Content:  cc.Content,
	}
	if err := tx.Create(&c).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	if err := t.Commented(tx, objectID); err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	if ok, em := cs.Permissions.AddPermission(*author.Username, c.Resource(), permissions.Write); !ok {
		return nil, em
	}

	gz.LoggerFromContext(ctx).Info("Comment created. ID=", c.ID, " Author=", author.ID,
		" Object=", objectID, " Relation=", rel)
	return &c, nil
}

// CommentList returns the paginated comments of an object, oldest first,
// decorated with their reputation counters.
func (cs *Service) CommentList(p *gz.PaginationRequest, tx *gorm.DB, rel reputation.Relation,
	objectID uint) (*CommentResponses, *gz.PaginationResult, *gz.ErrMsg) {

	t, em := cs.target(rel)
	if em != nil {
		return nil, nil, em
	}
	if _, em := t.Owner(tx, objectID); em != nil {
		return nil, nil, em
	}

	var list Comments
	q := tx.Model(&Comment{}).Where("object_id = ? AND relation = ?", objectID, string(rel)).
		Order("created_at asc, id asc")
	pagination, err := gz.PaginateQuery(q, &list, *p)
	if err != nil {
		return nil, nil, gz.NewErrorMessageWithBase(gz.ErrorInvalidPaginationRequest, err)
	}
	if !pagination.PageFound {
		return nil, nil, gz.NewErrorMessage(gz.ErrorPaginationPageNotFound)
	}

	responses, em := cs.createResponses(tx, list)
	if em != nil {
		return nil, nil, em
	}
	return responses, pagination, nil
}

// createResponses decorates comments with their author usernames and
// reputation counters.
func (cs *Service) createResponses(tx *gorm.DB, list Comments) (*CommentResponses, *gz.ErrMsg) {
	ids := make([]uint, 0, len(list))
	authorIDs := make([]uint, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
		authorIDs = append(authorIDs, c.AuthorID)
	}

	counts, err := cs.Reputation.CountsFor(tx, reputation.RelationComment, ids)
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

	responses := CommentResponses{}
	for _, c := range list {
		responses = append(responses, CommentResponse{
			ID:             c.ID,
			CreatedAt:      c.CreatedAt,
			AuthorID:       c.AuthorID,
			AuthorUsername: usernames[c.AuthorID],
			ObjectID:       c.ObjectID,
			Relation:       c.Relation,
			Content:        c.Content,
			Counts:         counts[c.ID],
		})
	}
	return &responses, nil
}

// RemoveComment removes a comment and its reputation entries. Only the
// author or a moderator can remove a comment.
func (cs *Service) RemoveComment(ctx context.Context, tx *gorm.DB, id uint,
	user *users.User) (*Comment, *gz.ErrMsg) {

	if user == nil {
		return nil, gz.NewErrorMessage(gz.ErrorAuthNoUser)
	}
	c, em := ByID(tx, id)
	if em != nil {
		return nil, em
	}
	if ok, em := cs.Permissions.CanWrite(*user.Username, c.Resource()); em != nil {
		return nil, em
	} else if !ok {
		return nil, generics.NewForbiddenError("only the author can remove a comment")
	}
	if em := cs.remove(tx, c); em != nil {
		return nil, em
	}
	gz.LoggerFromContext(ctx).Info("Comment removed. ID=", c.ID, " By=", user.ID)
	return c, nil
}

func (cs *Service) remove(tx *gorm.DB, c *Comment) *gz.ErrMsg {
	if _, err := cs.Reputation.DeleteForObject(tx, c.ID, reputation.RelationComment); err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorDbDelete, err)
	}
	if err := tx.Delete(c).Error; err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorDbDelete, err)
	}
	cs.Permissions.RemoveResource(c.Resource())
	return nil
}

// DeleteForObject removes all the comments of an object, together with their
// reputation entries. Owners call it when the object is deleted.
// Returns the number of removed comments.
func (cs *Service) DeleteForObject(tx *gorm.DB, rel reputation.Relation, objectID uint) (int, *gz.ErrMsg) {
	var list Comments
	if err := tx.Where("object_id = ? AND relation = ?", objectID, string(rel)).Find(&list).Error; err != nil {
		return 0, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	// Comments are removed one by one so their callbacks take back the
	// authors' points.
	for i := range list {
		if em := cs.remove(tx, &list[i]); em != nil {
			return 0, em
		}
	}
	return len(list), nil
}

type commentCountRow struct {
	ObjectID uint
	Total    int
}

// CountsFor returns the number of comments of many objects of the same
// relation, keyed by object id. Objects without comments are not included.
func (cs *Service) CountsFor(tx *gorm.DB, rel reputation.Relation, ids []uint) (map[uint]int, error) {
	result := make(map[uint]int, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []commentCountRow
	err := tx.Table("comments").
		Select("object_id, COUNT(*) AS total").
		Where("deleted_at IS NULL AND relation = ? AND object_id IN (?)", string(rel), ids).
		Group("object_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		result[r.ObjectID] = r.Total
	}
	return result, nil
}
