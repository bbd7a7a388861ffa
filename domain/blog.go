package domain

import (
	"context"
	"time"
)

// Blog is a post about a game. AuthorID is set at creation and never changes;
// only the author may update or delete the post.
type Blog struct {
	ID           int     `json:"id" gorm:"primaryKey"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	GameImage    string  `json:"gameImage"`
	GameCategory string  `json:"gameCategory"`
	GameLink     string  `json:"gameLink"`
	Rating       float64 `json:"rating"`

	AuthorID int   `json:"authorId" gorm:"index;notNull"`
	Author   *User `json:"author,omitempty"`

	// Likes is the endorsement set, one row per user at most.
	Likes []Like `json:"likes" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BlogService is a set of methods to manipulate and work with the Blog model.
type BlogService interface {
	ByID(ctx context.Context, id int) (*Blog, error)
	All(ctx context.Context) ([]Blog, error)
	Create(ctx context.Context, blog *Blog) error
	Update(ctx context.Context, blog *Blog) error
	Delete(ctx context.Context, blog *Blog) error
}
