package crud

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gamerlog/domain"
	"gamerlog/errs"
)

// LikeService manages the endorsement set of blogs.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming toggle calls.
// On success, it passes the call on to likeGorm.
type likeValidator struct {
	likeGorm
}

// likeGorm runs the toggle against the database. It assumes the referenced
// blog exists. The like count it reports is always re-derived from the likes
// table, it is never cached anywhere.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Toggle validates the toggle call and passes it on to likeGorm.
func (lv *likeValidator) Toggle(ctx context.Context, blogID, userID int) (*domain.LikeStatus, error) {
	if userID <= 0 {
		return nil, errs.Errorf(errs.EINVALID, "A valid user id is required.")
	}
	err := lv.db.WithContext(ctx).First(&domain.Blog{}, "id = ?", blogID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "LOG NOT FOUND.")
		}
		return nil, err
	}
	return lv.likeGorm.Toggle(ctx, blogID, userID)
}

// Toggle flips the (user, blog) like membership and reports the new state.
// Remove-then-insert runs in one transaction, and the insert goes through an
// ON CONFLICT DO NOTHING against the composite unique index, so the set never
// holds the same user twice however concurrent toggles interleave.
func (lg *likeGorm) Toggle(ctx context.Context, blogID, userID int) (*domain.LikeStatus, error) {
	var status domain.LikeStatus
	err := lg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND blog_id = ?", userID, blogID).Delete(&domain.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			like := domain.Like{UserID: userID, BlogID: blogID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
			status.IsLiked = true
		}
		var count int64
		if err := tx.Model(&domain.Like{}).Where("blog_id = ?", blogID).Count(&count).Error; err != nil {
			return err
		}
		status.Likes = int(count)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &status, nil
}
