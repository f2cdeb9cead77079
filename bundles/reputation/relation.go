package reputation

import "strings"

// Relation identifies which kind of object a reputation entry (or a comment)
// targets.
type Relation string

// Supported relations.
const (
	RelationForumTopic  Relation = "forum-topic"
	RelationUserGallery Relation = "user-gallery"
	RelationComment     Relation = "comment"
	RelationProfile     Relation = "profile"
)

// Relations lists every supported relation.
var Relations = []Relation{RelationForumTopic, RelationUserGallery, RelationComment, RelationProfile}

// ParseRelation returns the Relation matching raw, ignoring case and
// surrounding spaces.
func ParseRelation(raw string) (Relation, bool) {
	r := Relation(strings.ToLower(strings.TrimSpace(raw)))
	if !r.IsValid() {
		return "", false
	}
	return r, true
}

// IsValid returns true if r is one of the supported relations.
func (r Relation) IsValid() bool {
	switch r {
	case RelationForumTopic, RelationUserGallery, RelationComment, RelationProfile:
		return true
	default:
		return false
	}
}

func (r Relation) String() string {
	return string(r)
}
