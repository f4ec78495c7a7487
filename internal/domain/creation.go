package domain

import "time"

// CreationKind enumerates supported request kinds. The set is closed and a
// row's kind never changes after insert.
type CreationKind string

const (
	KindArticle           CreationKind = "article"
	KindBlogTitle         CreationKind = "blog-title"
	KindImage             CreationKind = "image"
	KindBackgroundRemoval CreationKind = "background-removal"
	KindObjectRemoval     CreationKind = "object-removal"
	KindResumeReview      CreationKind = "resume-review"
)

// Valid reports whether k is one of the supported kinds.
func (k CreationKind) Valid() bool {
	switch k {
	case KindArticle, KindBlogTitle, KindImage, KindBackgroundRemoval, KindObjectRemoval, KindResumeReview:
		return true
	}
	return false
}

// Creation is one persisted record of a completed generation or transform.
// A row exists only when the provider call succeeded and the insert landed.
type Creation struct {
	ID        string
	UserID    string
	Kind      CreationKind
	Prompt    string
	Content   string
	Publish   bool
	Likes     []string
	CreatedAt time.Time
}
