package forum

import (
	"context"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/comments"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/generics"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/permissions"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

// Service is the main struct exported by this Forum Service.
type Service struct {
	Reputation  *reputation.Service
	Comments    *comments.Service
	Permissions *permissions.Permissions
	// Index is optional. Searches use SQL when it is nil or fails.
	Index TopicIndex
}

// Owner returns the author of a topic. Together with Commented it makes the
// Service a comments.Target.
func (fs *Service) Owner(tx *gorm.DB, id uint) (uint, *gz.ErrMsg) {
	return Owner(tx, id)
}

// Commented bumps the last comment time of a topic.
func (fs *Service) Commented(tx *gorm.DB, id uint) error {
	return tx.Model(&Topic{}).Where("id = ?", id).
		UpdateColumn("commented_at", gorm.NowFunc()).Error
}

// canEdit returns true if the user is the author of the topic or a moderator.
func (fs *Service) canEdit(user *users.User, t *Topic) (bool, *gz.ErrMsg) {
	if user == nil || user.Username == nil {
		return false, nil
	}
	if user.ID == t.AuthorID {
		return true, nil
	}
	return fs.Permissions.CanWrite(*user.Username, t.Resource())
}

func (fs *Service) isModerator(user *users.User) bool {
	return user != nil && user.Username != nil && fs.Permissions.IsModerator(*user.Username)
}

// CreateTopic creates a new topic in a section.
func (fs *Service) CreateTopic(ctx context.Context, tx *gorm.DB, author *users.User,
	ct *CreateTopic) (*TopicResponse, *gz.ErrMsg) {

	if author == nil {
		return nil, gz.NewErrorMessage(gz.ErrorAuthNoUser)
	}
	if author.IsBan {
		return nil, generics.NewForbiddenError("user is banned")
	}
	section, em := SectionByID(tx, ct.SectionID)
	if em != nil {
		return nil, em
	}
	if !section.IsActive && !fs.isModerator(author) {
		return nil, gz.NewErrorMessage(gz.ErrorIDNotFound)
	}
	if !section.UserCanAddTopics && !fs.isModerator(author) {
		return nil, generics.NewForbiddenError("only moderators can add topics to this section")
	}

	now := gorm.NowFunc()
	t := Topic{
		SectionID:      section.ID,
		AuthorID:       author.ID,
		Title:          ct.Title,
		Content:        ct.Content,
		PreviewContent: ct.PreviewContent,
		StartOn:        ct.StartOn,
		Approved:       true,
		CommentedAt:    &now,
	}
	if err := tx.Create(&t).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	if ok, em := fs.Permissions.AddPermission(*author.Username, t.Resource(), permissions.Write); !ok {
		return nil, em
	}
	fs.index(ctx, &t)

	gz.LoggerFromContext(ctx).Info("Forum topic created. ID=", t.ID, " Author=", author.ID)
	return fs.createTopicResponse(tx, &t)
}

// GetTopic returns a topic and counts the view. Topics not yet started (or
// not approved) are only visible to their author and moderators.
func (fs *Service) GetTopic(ctx context.Context, tx *gorm.DB, id uint, user *users.User) (*TopicResponse, *gz.ErrMsg) {
	t, em := TopicByID(tx, id)
	if em != nil {
		return nil, em
	}
	if !t.IsVisible(gorm.NowFunc()) {
		if ok, em := fs.canEdit(user, t); em != nil {
			return nil, em
		} else if !ok {
			return nil, gz.NewErrorMessage(gz.ErrorIDNotFound)
		}
	}
	if err := tx.Model(t).UpdateColumn("reviews", gorm.Expr("reviews + ?", 1)).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	t.Reviews++
	return fs.createTopicResponse(tx, t)
}

// UpdateTopic updates a topic. Only the author and moderators can update it,
// and only moderators can change the approval.
func (fs *Service) UpdateTopic(ctx context.Context, tx *gorm.DB, id uint, ut *UpdateTopic,
	user *users.User) (*TopicResponse, *gz.ErrMsg) {

	t, em := TopicByID(tx, id)
	if em != nil {
		return nil, em
	}
	if ok, em := fs.canEdit(user, t); em != nil {
		return nil, em
	} else if !ok {
		return nil, generics.NewForbiddenError("only the author can update a topic")
	}

	fields := map[string]interface{}{}
	if ut.Title != nil {
		fields["title"] = *ut.Title
	}
	if ut.Content != nil {
		fields["content"] = *ut.Content
	}
	if ut.PreviewContent != nil {
		fields["preview_content"] = *ut.PreviewContent
	}
	if ut.StartOn != nil {
		fields["start_on"] = *ut.StartOn
	}
	if ut.Approved != nil {
		if !fs.isModerator(user) {
			return nil, generics.NewForbiddenError("only moderators can approve topics")
		}
		fields["approved"] = *ut.Approved
	}
	if len(fields) > 0 {
		if err := tx.Model(t).Updates(fields).Error; err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
		}
	}
	fs.index(ctx, t)

	gz.LoggerFromContext(ctx).Info("Forum topic updated. ID=", t.ID, " By=", user.ID)
	return fs.createTopicResponse(tx, t)
}

// RebaseTopic moves a topic to another section.
func (fs *Service) RebaseTopic(ctx context.Context, tx *gorm.DB, id uint, rt *RebaseTopic,
	user *users.User) (*TopicResponse, *gz.ErrMsg) {

	t, em := TopicByID(tx, id)
	if em != nil {
		return nil, em
	}
	if ok, em := fs.canEdit(user, t); em != nil {
		return nil, em
	} else if !ok {
		return nil, generics.NewForbiddenError("only the author can move a topic")
	}
	section, em := SectionByID(tx, rt.SectionID)
	if em != nil {
		return nil, em
	}
	if err := tx.Model(t).Update("section_id", section.ID).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	fs.index(ctx, t)

	gz.LoggerFromContext(ctx).Info("Forum topic moved. ID=", t.ID, " Section=", section.ID)
	return fs.createTopicResponse(tx, t)
}

// RemoveTopic removes a topic together with its comments and all the
// reputation entries of both.
func (fs *Service) RemoveTopic(ctx context.Context, tx *gorm.DB, id uint, user *users.User) (*Topic, *gz.ErrMsg) {
	t, em := TopicByID(tx, id)
	if em != nil {
		return nil, em
	}
	if ok, em := fs.canEdit(user, t); em != nil {
		return nil, em
	} else if !ok {
		return nil, generics.NewForbiddenError("only the author can remove a topic")
	}
	if em := fs.removeTopic(ctx, tx, t); em != nil {
		return nil, em
	}
	gz.LoggerFromContext(ctx).Info("Forum topic removed. ID=", t.ID, " By=", user.ID)
	return t, nil
}

// removeTopic removes a topic, its comments and their reputation entries,
// its permissions and its search document.
func (fs *Service) removeTopic(ctx context.Context, tx *gorm.DB, t *Topic) *gz.ErrMsg {
	if _, em := fs.Comments.DeleteForObject(tx, reputation.RelationForumTopic, t.ID); em != nil {
		return em
	}
	if _, err := fs.Reputation.DeleteForObject(tx, t.ID, reputation.RelationForumTopic); err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorDbDelete, err)
	}
	if err := tx.Delete(t).Error; err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorDbDelete, err)
	}
	fs.Permissions.RemoveResource(t.Resource())
	if fs.Index != nil {
		if err := fs.Index.Remove(ctx, t.ID); err != nil {
			gz.LoggerFromContext(ctx).Error("Error removing topic from index:", err)
		}
	}
	return nil
}

// visible restricts a topics query to approved and started topics.
func visible(q *gorm.DB) *gorm.DB {
	return q.Where("approved = ? AND (start_on IS NULL OR start_on <= ?)", true, gorm.NowFunc())
}

// TopicsBySection returns the visible topics of a section, most recently
// commented first.
func (fs *Service) TopicsBySection(p *gz.PaginationRequest, tx *gorm.DB,
	sectionID uint) (*TopicResponses, *gz.PaginationResult, *gz.ErrMsg) {

	if _, em := SectionByID(tx, sectionID); em != nil {
		return nil, nil, em
	}
	q := visible(tx.Model(&Topic{}).Where("section_id = ?", sectionID)).
		Order("commented_at desc, id desc")
	return fs.paginateTopics(p, tx, q)
}

// TopicsByUser returns the topics created by a user, newest first. Hidden
// topics are only listed for the author and moderators.
func (fs *Service) TopicsByUser(p *gz.PaginationRequest, tx *gorm.DB, authorID uint,
	requestor *users.User) (*TopicResponses, *gz.PaginationResult, *gz.ErrMsg) {

	if _, em := users.ByID(tx, authorID); em != nil {
		return nil, nil, em
	}
	q := tx.Model(&Topic{}).Where("author_id = ?", authorID)
	if requestor == nil || (requestor.ID != authorID && !fs.isModerator(requestor)) {
		q = visible(q)
	}
	return fs.paginateTopics(p, tx, q.Order("created_at desc, id desc"))
}

// SearchTopics performs a full text search over visible topics. The
// ElasticSearch index is used when available, otherwise a SQL LIKE query.
func (fs *Service) SearchTopics(ctx context.Context, p *gz.PaginationRequest, tx *gorm.DB,
	query string) (*TopicResponses, *gz.PaginationResult, *gz.ErrMsg) {

	if fs.Index != nil {
		res, pagination, err := fs.searchIndex(ctx, p, tx, query)
		if err == nil {
			return res, pagination, nil
		}
		gz.LoggerFromContext(ctx).Error("Topic search failed, using SQL instead:", err)
	}

	q := visible(tx.Model(&Topic{}))
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("title LIKE ? OR content LIKE ?", like, like)
	}
	return fs.paginateTopics(p, tx, q.Order("commented_at desc, id desc"))
}

func (fs *Service) searchIndex(ctx context.Context, p *gz.PaginationRequest, tx *gorm.DB,
	query string) (*TopicResponses, *gz.PaginationResult, error) {

	ids, total, err := fs.Index.Search(ctx, query, p.Page, p.PerPage)
	if err != nil {
		return nil, nil, err
	}

	var found Topics
	if len(ids) > 0 {
		if err := visible(tx.Where("id IN (?)", ids)).Find(&found).Error; err != nil {
			return nil, nil, err
		}
	}
	// Keep the relevance order of the index.
	byID := make(map[uint]Topic, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	ordered := make(Topics, 0, len(found))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		}
	}

	responses, em := fs.createTopicResponses(tx, ordered, false)
	if em != nil {
		return nil, nil, errors.New(em.Msg)
	}

	page := gz.PaginationResult{}
	page.Page = p.Page
	page.PerPage = p.PerPage
	page.URL = p.URL
	page.QueryCount = total
	page.PageFound = len(ordered) > 0 || (page.Page == 1 && len(ordered) == 0)
	return responses, &page, nil
}

func (fs *Service) paginateTopics(p *gz.PaginationRequest, tx *gorm.DB,
	q *gorm.DB) (*TopicResponses, *gz.PaginationResult, *gz.ErrMsg) {

	var topics Topics
	pagination, err := gz.PaginateQuery(q, &topics, *p)
	if err != nil {
		return nil, nil, gz.NewErrorMessageWithBase(gz.ErrorInvalidPaginationRequest, err)
	}
	if !pagination.PageFound {
		return nil, nil, gz.NewErrorMessage(gz.ErrorPaginationPageNotFound)
	}
	responses, em := fs.createTopicResponses(tx, topics, false)
	if em != nil {
		return nil, nil, em
	}
	return responses, pagination, nil
}

// RebuildIndex adds every active topic to the search index.
func (fs *Service) RebuildIndex(ctx context.Context, tx *gorm.DB) *gz.ErrMsg {
	if fs.Index == nil {
		return nil
	}
	var topics Topics
	if err := tx.Find(&topics).Error; err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	for i := range topics {
		if err := fs.Index.Index(ctx, &topics[i]); err != nil {
			return gz.NewErrorMessageWithBase(gz.ErrorUnexpected, err)
		}
	}
	gz.LoggerFromContext(ctx).Info("Indexed ", len(topics), " forum topics")
	return nil
}

// index updates the search index. Failures are logged, the database stays
// the source of truth.
func (fs *Service) index(ctx context.Context, t *Topic) {
	if fs.Index == nil {
		return
	}
	if err := fs.Index.Index(ctx, t); err != nil {
		gz.LoggerFromContext(ctx).Error("Error indexing topic:", err)
	}
}

func (fs *Service) createTopicResponse(tx *gorm.DB, t *Topic) (*TopicResponse, *gz.ErrMsg) {
	responses, em := fs.createTopicResponses(tx, Topics{*t}, true)
	if em != nil {
		return nil, em
	}
	return &(*responses)[0], nil
}

// createTopicResponses decorates topics with their author usernames and
// reputation counters. Contents are only included when full is true.
func (fs *Service) createTopicResponses(tx *gorm.DB, topics Topics, full bool) (*TopicResponses, *gz.ErrMsg) {
	ids := make([]uint, 0, len(topics))
	authorIDs := make([]uint, 0, len(topics))
	for _, t := range topics {
		ids = append(ids, t.ID)
		authorIDs = append(authorIDs, t.AuthorID)
	}
	counts, err := fs.Reputation.CountsFor(tx, reputation.RelationForumTopic, ids)
	if err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	usernames, err := usernamesByID(tx, authorIDs)
	if err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}

	responses := TopicResponses{}
	for _, t := range topics {
		r := TopicResponse{
			ID:             t.ID,
			CreatedAt:      t.CreatedAt,
			UpdatedAt:      t.UpdatedAt,
			SectionID:      t.SectionID,
			AuthorID:       t.AuthorID,
			AuthorUsername: usernames[t.AuthorID],
			Title:          t.Title,
			PreviewContent: t.PreviewContent,
			StartOn:        t.StartOn,
			Approved:       t.Approved,
			News:           t.News,
			Reviews:        t.Reviews,
			CommentedAt:    t.CommentedAt,
			Counts:         counts[t.ID],
		}
		if full {
			r.Content = t.Content
		}
		responses = append(responses, r)
	}
	return &responses, nil
}

func usernamesByID(tx *gorm.DB, ids []uint) (map[uint]string, error) {
	result := map[uint]string{}
	if len(ids) == 0 {
		return result, nil
	}
	var list users.Users
	if err := tx.Unscoped().Where("id IN (?)", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, u := range list {
		result[u.ID] = *u.Username
	}
	return result, nil
}
