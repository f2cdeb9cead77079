package forum

import (
	"context"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// ModerateTopic changes the approval and news flags of a topic.
func (fs *Service) ModerateTopic(ctx context.Context, tx *gorm.DB, id uint,
	mt *ModerateTopic) (*TopicResponse, *gz.ErrMsg) {

	t, em := TopicByID(tx, id)
	if em != nil {
		return nil, em
	}
	fields := map[string]interface{}{}
	if mt.Approved != nil {
		fields["approved"] = *mt.Approved
	}
	if mt.News != nil {
		fields["news"] = *mt.News
	}
	if len(fields) > 0 {
		if err := tx.Model(t).Updates(fields).Error; err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
		}
	}
	fs.index(ctx, t)

	gz.LoggerFromContext(ctx).Info("Forum topic moderated. ID=", t.ID, " Approved=", t.Approved, " News=", t.News)
	return fs.createTopicResponse(tx, t)
}

// ModeratedTopicList returns the started topics matching the criteria,
// approved or not, newest first. Each topic carries its reputation counters
// and its comment count.
func (fs *Service) ModeratedTopicList(p *gz.PaginationRequest, tx *gorm.DB,
	c *TopicCriteria) (*ModeratedTopics, *gz.PaginationResult, *gz.ErrMsg) {

	q := tx.Model(&Topic{}).Where("start_on IS NULL OR start_on <= ?", gorm.NowFunc())
	if c.Query != "" {
		like := "%" + c.Query + "%"
		q = q.Where("title LIKE ? OR content LIKE ?", like, like)
	}
	if c.SectionID != 0 {
		q = q.Where("section_id = ?", c.SectionID)
	}
	if c.AuthorID != 0 {
		q = q.Where("author_id = ?", c.AuthorID)
	}
	if c.Approved != nil {
		q = q.Where("approved = ?", *c.Approved)
	}
	if c.News != nil {
		q = q.Where("news = ?", *c.News)
	}

	var topics Topics
	pagination, err := gz.PaginateQuery(q.Order("created_at desc, id desc"), &topics, *p)
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

	ids := make([]uint, 0, len(topics))
	for _, t := range topics {
		ids = append(ids, t.ID)
	}
	commentCounts, err := fs.Comments.CountsFor(tx, reputation.RelationForumTopic, ids)
	if err != nil {
		return nil, nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}

	result := make(ModeratedTopics, 0, len(*responses))
	for _, r := range *responses {
		result = append(result, ModeratedTopic{TopicResponse: r, CommentCount: commentCounts[r.ID]})
	}
	return &result, pagination, nil
}
