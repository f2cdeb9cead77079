package forum

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/generics"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// SectionList returns the forum sections ordered by position. Inactive
// sections are only included when requested.
func (fs *Service) SectionList(tx *gorm.DB, includeInactive bool) (*Sections, *gz.ErrMsg) {
	var sections Sections
	q := tx.Model(&Section{}).Order("position asc, id asc")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&sections).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	return &sections, nil
}

// CreateSection creates a new forum section.
func (fs *Service) CreateSection(ctx context.Context, tx *gorm.DB, cs *CreateSection) (*Section, *gz.ErrMsg) {
	s := sectionSlug(cs)
	if s == "" {
		return nil, generics.NewUnprocessableError(nil, []string{"slug"})
	}

	var count int
	if err := tx.Model(&Section{}).Unscoped().Where("name = ? OR slug = ?", cs.Name, s).Count(&count).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	if count > 0 {
		return nil, gz.NewErrorMessageWithArgs(gz.ErrorResourceExists, nil, []string{cs.Name})
	}

	section := Section{
		Name:             &cs.Name,
		Title:            cs.Title,
		Slug:             &s,
		Description:      cs.Description,
		Position:         cs.Position,
		IsActive:         true,
		IsGeneral:        cs.IsGeneral,
		UserCanAddTopics: true,
	}
	if err := tx.Create(&section).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	// Zero values are skipped by Create, so disabled flags need an update.
	fields := map[string]interface{}{}
	if cs.IsActive != nil && !*cs.IsActive {
		fields["is_active"] = false
	}
	if cs.UserCanAddTopics != nil && !*cs.UserCanAddTopics {
		fields["user_can_add_topics"] = false
	}
	if len(fields) > 0 {
		if err := tx.Model(&section).Updates(fields).Error; err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
		}
	}

	gz.LoggerFromContext(ctx).Info("Forum section created. Slug=", s)
	return &section, nil
}

// UpdateSection updates a forum section.
func (fs *Service) UpdateSection(ctx context.Context, tx *gorm.DB, id uint, us *UpdateSection) (*Section, *gz.ErrMsg) {
	section, em := SectionByID(tx, id)
	if em != nil {
		return nil, em
	}

	fields := map[string]interface{}{}
	if us.Title != nil {
		fields["title"] = *us.Title
	}
	if us.Description != nil {
		fields["description"] = *us.Description
	}
	if us.Position != nil {
		fields["position"] = *us.Position
	}
	if us.IsActive != nil {
		fields["is_active"] = *us.IsActive
	}
	if us.IsGeneral != nil {
		fields["is_general"] = *us.IsGeneral
	}
	if us.UserCanAddTopics != nil {
		fields["user_can_add_topics"] = *us.UserCanAddTopics
	}
	if len(fields) > 0 {
		if err := tx.Model(section).Updates(fields).Error; err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
		}
	}
	gz.LoggerFromContext(ctx).Info("Forum section updated. Slug=", *section.Slug)
	return section, nil
}

// DeleteSection removes a forum section and all its topics, hidden ones
// included. Each topic is removed like RemoveTopic does.
func (fs *Service) DeleteSection(ctx context.Context, tx *gorm.DB, id uint) (*Section, *gz.ErrMsg) {
	section, em := SectionByID(tx, id)
	if em != nil {
		return nil, em
	}
	var topics Topics
	if err := tx.Where("section_id = ?", id).Find(&topics).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	for i := range topics {
		if em := fs.removeTopic(ctx, tx, &topics[i]); em != nil {
			return nil, em
		}
	}
	if err := tx.Delete(section).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbDelete, err)
	}
	gz.LoggerFromContext(ctx).Info("Forum section removed. Slug=", *section.Slug, " Topics=", len(topics))
	return section, nil
}

// LatestTopicsPerSection returns, for every active section, its n latest
// visible topics ordered by last comment time. A single UNION ALL query of
// per-section sub-selects is used.
func (fs *Service) LatestTopicsPerSection(tx *gorm.DB, n int) ([]SectionTopics, *gz.ErrMsg) {
	sections, em := fs.SectionList(tx, false)
	if em != nil {
		return nil, em
	}
	result := make([]SectionTopics, 0, len(*sections))
	if len(*sections) == 0 || n <= 0 {
		for _, s := range *sections {
			result = append(result, SectionTopics{Section: s, Topics: TopicResponses{}})
		}
		return result, nil
	}

	now := gorm.NowFunc()
	parts := make([]string, 0, len(*sections))
	args := make([]interface{}, 0, 3*len(*sections))
	for i, s := range *sections {
		parts = append(parts, fmt.Sprintf("SELECT * FROM (SELECT * FROM forum_topics "+
			"WHERE section_id = ? AND deleted_at IS NULL AND approved = ? AND (start_on IS NULL OR start_on <= ?) "+
			"ORDER BY commented_at DESC, id DESC LIMIT %d) AS s%d", n, i))
		args = append(args, s.ID, true, now)
	}

	var topics Topics
	if err := tx.Raw(strings.Join(parts, " UNION ALL "), args...).Scan(&topics).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}

	responses, em := fs.createTopicResponses(tx, topics, false)
	if em != nil {
		return nil, em
	}
	bySection := map[uint]TopicResponses{}
	for _, r := range *responses {
		bySection[r.SectionID] = append(bySection[r.SectionID], r)
	}
	for _, s := range *sections {
		list := bySection[s.ID]
		if list == nil {
			list = TopicResponses{}
		}
		// The UNION does not keep the order of the sub-selects.
		sort.SliceStable(list, func(i, j int) bool {
			return commentedAfter(list[i], list[j])
		})
		result = append(result, SectionTopics{Section: s, Topics: list})
	}
	return result, nil
}

func commentedAfter(a, b TopicResponse) bool {
	if a.CommentedAt == nil || b.CommentedAt == nil {
		return a.ID > b.ID
	}
	if a.CommentedAt.Equal(*b.CommentedAt) {
		return a.ID > b.ID
	}
	return a.CommentedAt.After(*b.CommentedAt)
}
