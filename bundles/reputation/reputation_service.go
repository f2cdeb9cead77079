package reputation

import (
	"context"
	"fmt"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/generics"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// ObjectResolver looks up a rated object by id.
type ObjectResolver interface {
	// Owner returns the id of the user owning the object with the given id,
	// or an ErrMsg if the object does not exist.
	Owner(tx *gorm.DB, id uint) (uint, *gz.ErrMsg)
}

// ResolverFunc adapts a function into an ObjectResolver.
type ResolverFunc func(tx *gorm.DB, id uint) (uint, *gz.ErrMsg)

// Owner calls f(tx, id).
func (f ResolverFunc) Owner(tx *gorm.DB, id uint) (uint, *gz.ErrMsg) {
	return f(tx, id)
}

// Service is the reputation ledger. It records votes on rated objects and
// derives their counters.
type Service struct {
	resolvers map[Relation]ObjectResolver
}

// NewService creates a reputation Service. User profiles are resolvable out
// of the box, other relations must be registered by the bundles owning them.
func NewService() *Service {
	s := &Service{resolvers: make(map[Relation]ObjectResolver)}
	s.Register(RelationProfile, ResolverFunc(users.Owner))
	return s
}

// Register sets the resolver used for the given relation.
func (s *Service) Register(rel Relation, resolver ObjectResolver) {
	s.resolvers[rel] = resolver
}

// Recipient returns the id of the user owning the rated object.
func (s *Service) Recipient(tx *gorm.DB, objectID uint, rel Relation) (uint, *gz.ErrMsg) {
	if !rel.IsValid() {
		return 0, generics.NewUnprocessableError(nil, []string{"relation:" + rel.String()})
	}
	resolver, ok := s.resolvers[rel]
	if !ok {
		return 0, gz.NewErrorMessageWithArgs(gz.ErrorNameNotFound, nil, []string{rel.String()})
	}
	return resolver.Owner(tx, objectID)
}

// SubmitVote records the sender's rating of an object. A previous vote of the
// same sender on the same object is overwritten. Returns the recomputed score
// of the object.
func (s *Service) SubmitVote(ctx context.Context, tx *gorm.DB, sender *users.User,
	objectID uint, rel Relation, in *VoteInput) (*ScoreResponse, *gz.ErrMsg) {

	if sender == nil {
		return nil, gz.NewErrorMessage(gz.ErrorAuthNoUser)
	}
	if in.Rating != Positive && in.Rating != Negative {
		return nil, generics.NewUnprocessableError(nil, []string{fmt.Sprintf("Rating:%d", in.Rating)})
	}

	recipient, em := s.Recipient(tx, objectID, rel)
	if em != nil {
		return nil, em
	}
	if recipient == sender.ID {
		return nil, generics.NewForbiddenError("cannot rate your own content")
	}

	blocked, err := users.IsBlocked(tx, sender.ID, recipient)
	if err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	if blocked {
		return nil, generics.NewForbiddenError("user is blocked")
	}

	entry := Entry{
		SenderID:    sender.ID,
		RecipientID: recipient,
		ObjectID:    objectID,
		Relation:    rel,
		Rating:      in.Rating,
		Comment:     in.Comment,
	}
	if err := upsertEntry(tx, &entry); err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}

	gz.LoggerFromContext(ctx).Debug("Vote registered. Sender=", sender.ID, " Object=", objectID,
		" Relation=", rel, " Rating=", in.Rating)

	return s.scoreResponse(tx, objectID, rel)
}

// RemoveVote removes the sender's vote on an object, if any. Returns the
// recomputed score of the object.
func (s *Service) RemoveVote(ctx context.Context, tx *gorm.DB, sender *users.User,
	objectID uint, rel Relation) (*ScoreResponse, *gz.ErrMsg) {

	if sender == nil {
		return nil, gz.NewErrorMessage(gz.ErrorAuthNoUser)
	}
	if _, em := s.Recipient(tx, objectID, rel); em != nil {
		return nil, em
	}

	q := tx.Where("sender_id = ? AND object_id = ? AND relation = ?", sender.ID, objectID, string(rel)).
		Delete(&Entry{})
	if q.Error != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbDelete, q.Error)
	}
	if q.RowsAffected > 0 {
		gz.LoggerFromContext(ctx).Debug("Vote removed. Sender=", sender.ID, " Object=", objectID,
			" Relation=", rel)
	}

	return s.scoreResponse(tx, objectID, rel)
}

func (s *Service) scoreResponse(tx *gorm.DB, objectID uint, rel Relation) (*ScoreResponse, *gz.ErrMsg) {
	counts, err := s.Counts(tx, objectID, rel)
	if err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	return &ScoreResponse{Rating: counts.Score}, nil
}

// GetVotes returns the paginated list of votes given to an object, newest
// first.
func (s *Service) GetVotes(p *gz.PaginationRequest, tx *gorm.DB, objectID uint,
	rel Relation) (*Votes, *gz.PaginationResult, *gz.ErrMsg) {

	if _, em := s.Recipient(tx, objectID, rel); em != nil {
		return nil, nil, em
	}
	q := queryForVotes(tx).Where("reputation_entries.object_id = ? AND reputation_entries.relation = ?",
		objectID, string(rel))
	return paginateVotes(p, q)
}

// GetUserVotes returns the paginated list of votes received by a user on any
// of its content, newest first.
func (s *Service) GetUserVotes(p *gz.PaginationRequest, tx *gorm.DB,
	userID uint) (*Votes, *gz.PaginationResult, *gz.ErrMsg) {

	if _, em := users.ByID(tx, userID); em != nil {
		return nil, nil, em
	}
	q := queryForVotes(tx).Where("reputation_entries.recipient_id = ?", userID)
	return paginateVotes(p, q)
}

// queryForVotes returns a query of reputation entries joined with their
// sender.
func queryForVotes(tx *gorm.DB) *gorm.DB {
	return tx.Table("reputation_entries").
		Select("reputation_entries.id, reputation_entries.created_at, reputation_entries.sender_id, " +
			"users.username AS sender_username, reputation_entries.recipient_id, " +
			"reputation_entries.object_id, reputation_entries.relation, reputation_entries.rating, " +
			"reputation_entries.comment").
		Joins("JOIN users ON users.id = reputation_entries.sender_id").
		Order("reputation_entries.created_at desc, reputation_entries.id desc")
}

func paginateVotes(p *gz.PaginationRequest, q *gorm.DB) (*Votes, *gz.PaginationResult, *gz.ErrMsg) {
	var votes Votes
	pagination, err := gz.PaginateQuery(q, &votes, *p)
	if err != nil {
		return nil, nil, gz.NewErrorMessageWithBase(gz.ErrorInvalidPaginationRequest, err)
	}
	if !pagination.PageFound {
		return nil, nil, gz.NewErrorMessage(gz.ErrorPaginationPageNotFound)
	}
	return &votes, pagination, nil
}

// Counts returns the derived counters of an object.
func (s *Service) Counts(tx *gorm.DB, objectID uint, rel Relation) (Counts, error) {
	positive, err := countRating(tx, objectID, rel, Positive)
	if err != nil {
		return Counts{}, err
	}
	negative, err := countRating(tx, objectID, rel, Negative)
	if err != nil {
		return Counts{}, err
	}
	return newCounts(positive, negative), nil
}

// Score returns positive_count - negative_count for an object.
func (s *Service) Score(tx *gorm.DB, objectID uint, rel Relation) (int, error) {
	counts, err := s.Counts(tx, objectID, rel)
	if err != nil {
		return 0, err
	}
	return counts.Score, nil
}

// CountsFor returns the derived counters of many objects of the same
// relation. Objects without votes are present with zero counters.
func (s *Service) CountsFor(tx *gorm.DB, rel Relation, ids []uint) (map[uint]Counts, error) {
	result := make(map[uint]Counts, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	for _, id := range ids {
		result[id] = Counts{}
	}
	rows, err := countRatingsFor(tx, rel, ids)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ObjectID] = newCounts(row.Positive, row.Negative)
	}
	return result, nil
}

// UserCounts returns the counters of all the votes received by a user.
func (s *Service) UserCounts(tx *gorm.DB, userID uint) (Counts, error) {
	var positive, negative int
	if err := tx.Model(&Entry{}).Where("recipient_id = ? AND rating > 0", userID).Count(&positive).Error; err != nil {
		return Counts{}, err
	}
	if err := tx.Model(&Entry{}).Where("recipient_id = ? AND rating < 0", userID).Count(&negative).Error; err != nil {
		return Counts{}, err
	}
	return newCounts(positive, negative), nil
}

// RecomputeUserScore sums the ratings received by a user and stores the
// result in the user's rating column. It is a consistency repair operation,
// votes do not update the column.
func (s *Service) RecomputeUserScore(ctx context.Context, tx *gorm.DB, userID uint) (int, *gz.ErrMsg) {
	var total int
	row := tx.Model(&Entry{}).Where("recipient_id = ?", userID).
		Select("COALESCE(SUM(rating), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return 0, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	// Note: RowsAffected is not checked since MySQL reports 0 for unchanged rows.
	err := tx.Model(&users.User{}).Unscoped().Where("id = ?", userID).UpdateColumn("rating", total).Error
	if err != nil {
		return 0, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	gz.LoggerFromContext(ctx).Debug("Recomputed user rating. User=", userID, " Rating=", total)
	return total, nil
}

// RecomputeAllUserScores runs RecomputeUserScore for every user, including
// removed ones.
func (s *Service) RecomputeAllUserScores(ctx context.Context, tx *gorm.DB) *gz.ErrMsg {
	var ids []uint
	if err := tx.Model(&users.User{}).Unscoped().Pluck("id", &ids).Error; err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	for _, id := range ids {
		if _, em := s.RecomputeUserScore(ctx, tx, id); em != nil {
			return em
		}
	}
	gz.LoggerFromContext(ctx).Info("Recomputed rating of ", len(ids), " users")
	return nil
}

// DeleteForObject removes all the entries of a rated object. Owners call it
// when the object is deleted.
func (s *Service) DeleteForObject(tx *gorm.DB, objectID uint, rel Relation) (int64, error) {
	q := tx.Where("object_id = ? AND relation = ?", objectID, string(rel)).Delete(&Entry{})
	return q.RowsAffected, q.Error
}

// DeleteForObjects removes all the entries of many rated objects of the same
// relation.
func (s *Service) DeleteForObjects(tx *gorm.DB, rel Relation, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := tx.Where("relation = ? AND object_id IN (?)", string(rel), ids).Delete(&Entry{})
	return q.RowsAffected, q.Error
}
