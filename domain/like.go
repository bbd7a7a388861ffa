package domain

import (
	"context"
	"time"
)

// Like represents a user's endorsement of a Blog. The composite unique index
// is what makes the likes of a blog a set: the database rejects a second row
// for the same (user, blog) pair no matter how requests interleave.
type Like struct {
	ID     int `json:"id" gorm:"primaryKey"`
	UserID int `json:"userId" gorm:"uniqueIndex:idx_like_user_blog;notNull"`
	BlogID int `json:"blogId" gorm:"uniqueIndex:idx_like_user_blog;notNull"`

	CreatedAt time.Time `json:"createdAt"`
}

// LikeStatus is the outcome of a toggle, the new like count of the blog and
// whether the calling user likes it now.
type LikeStatus struct {
	Likes   int  `json:"likes"`
	IsLiked bool `json:"isLiked"`
}

// LikeService flips the like relationship between a user and a blog.
// The same call likes and unlikes, calling it twice is a no-op overall.
type LikeService interface {
	Toggle(ctx context.Context, blogID, userID int) (*LikeStatus, error)
}
