package reputation

import (
	"time"
)

// Rating values
const (
	Positive = 1
	Negative = -1
)

// Entry is a directed rating given by a sender to the recipient that owns
// the rated object. There is at most one entry per (sender, object, relation).
type Entry struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SenderID    uint `gorm:"not null;unique_index:idx_sender_object_relation" json:"sender_id"`
	RecipientID uint `gorm:"not null;index:idx_recipient" json:"recipient_id"`

	ObjectID uint     `gorm:"not null;unique_index:idx_sender_object_relation;index:idx_object_relation" json:"object_id"`
	Relation Relation `gorm:"type:varchar(32);not null;unique_index:idx_sender_object_relation;index:idx_object_relation" json:"relation"`

	// Rating is either +1 or -1
	Rating int `gorm:"not null" json:"rating"`

	Comment *string `gorm:"type:text" json:"comment,omitempty"`
}

// TableName sets Entry's table name to be `reputation_entries`.
func (Entry) TableName() string {
	return "reputation_entries"
}

// Entries is a slice of Entry
type Entries []Entry

// Vote is a reputation entry joined with the identity of its sender.
type Vote struct {
	ID             uint      `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	SenderID       uint      `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	RecipientID    uint      `json:"recipient_id"`
	ObjectID       uint      `json:"object_id"`
	Relation       Relation  `json:"relation"`
	Rating         int       `json:"rating"`
	Comment        *string   `json:"comment,omitempty"`
}

// Votes is a slice of Vote
type Votes []Vote

// VoteInput is the body of a set_rating request.
type VoteInput struct {
	Rating  int     `json:"rating" form:"rating" validate:"required,oneof=1 -1"`
	Comment *string `json:"comment,omitempty" form:"comment" validate:"omitempty,max=1000"`
}

// ScoreResponse is returned after a vote is submitted or removed.
type ScoreResponse struct {
	Rating int `json:"rating"`
}

// Counts holds the derived reputation counters of a rated object.
type Counts struct {
	Positive int `json:"positive_count"`
	Negative int `json:"negative_count"`
	Score    int `json:"score"`
}

func newCounts(positive, negative int) Counts {
	return Counts{Positive: positive, Negative: negative, Score: positive - negative}
}
