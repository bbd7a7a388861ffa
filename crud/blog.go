package crud

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"gamerlog/domain"
	"gamerlog/errs"
)

// BlogService manages Blogs.
// It implements the domain.BlogService interface.
type BlogService struct {
	blogValidator
}

// blogValidator runs validations on incoming Blog data.
// On success, it passes the data on to blogGorm.
// Otherwise, it returns the error of the validation that has failed.
type blogValidator struct {
	blogGorm
}

// blogGorm runs CRUD operations on the database using incoming Blog data.
// It assumes that data has been validated.
type blogGorm struct {
	db *gorm.DB
}

// NewBlogService returns an instance of BlogService.
func NewBlogService(db *gorm.DB) *BlogService {
	return &BlogService{
		blogValidator{
			blogGorm{
				db: db,
			},
		},
	}
}

// Ensure the BlogService struct properly implements the domain.BlogService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.BlogService = &BlogService{}

// Create runs validations needed for creating new Blog database records.
func (bv *blogValidator) Create(ctx context.Context, blog *domain.Blog) error {
	err := runBlogValFns(blog,
		bv.titleRequired,
		bv.descriptionRequired,
		bv.gameImageRequired,
		bv.gameCategoryRequired,
		bv.ratingInRange,
		bv.authorRequired)
	if err != nil {
		return err
	}
	return bv.blogGorm.Create(ctx, blog)
}

// Update runs validations needed for updating a Blog record in the database.
func (bv *blogValidator) Update(ctx context.Context, blog *domain.Blog) error {
	err := runBlogValFns(blog,
		bv.titleRequired,
		bv.descriptionRequired,
		bv.gameImageRequired,
		bv.gameCategoryRequired,
		bv.ratingInRange,
		bv.authorRequired)
	if err != nil {
		return err
	}
	return bv.blogGorm.Update(ctx, blog)
}

// runBlogValFns runs any number of functions of type blogValFn on the passed in Blog object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runBlogValFns(blog *domain.Blog, fns ...blogValFn) error {
	for _, fn := range fns {
		if err := fn(blog); err != nil {
			return err
		}
	}
	return nil
}

// A blogValFn is any function that takes in a pointer to a domain.Blog object and returns an error.
type blogValFn func(blog *domain.Blog) error

// titleRequired makes sure the title is not the empty string.
func (bv *blogValidator) titleRequired(blog *domain.Blog) error {
	if strings.TrimSpace(blog.Title) == "" {
		return errs.Errorf(errs.EINVALID, "A title is required.")
	}
	return nil
}

// descriptionRequired makes sure the description is not the empty string.
func (bv *blogValidator) descriptionRequired(blog *domain.Blog) error {
	if strings.TrimSpace(blog.Description) == "" {
		return errs.Errorf(errs.EINVALID, "A description is required.")
	}
	return nil
}

// gameImageRequired makes sure an image reference was submitted.
func (bv *blogValidator) gameImageRequired(blog *domain.Blog) error {
	if blog.GameImage == "" {
		return errs.Errorf(errs.EINVALID, "A game image is required.")
	}
	return nil
}

// gameCategoryRequired makes sure a game category was submitted.
func (bv *blogValidator) gameCategoryRequired(blog *domain.Blog) error {
	if strings.TrimSpace(blog.GameCategory) == "" {
		return errs.Errorf(errs.EINVALID, "A game category is required.")
	}
	return nil
}

// ratingInRange keeps the rating on the 0 to 5 scale.
func (bv *blogValidator) ratingInRange(blog *domain.Blog) error {
	if blog.Rating < 0 || blog.Rating > 5 {
		return errs.Errorf(errs.EINVALID, "The rating must be between 0 and 5.")
	}
	return nil
}

// authorRequired makes sure the post is tied to an author.
func (bv *blogValidator) authorRequired(blog *domain.Blog) error {
	if blog.AuthorID <= 0 {
		return errs.Errorf(errs.EINVALID, "An author is required.")
	}
	return nil
}

// ByID retrieves a Blog database record by ID, along with its author and its
// likes.
func (bg *blogGorm) ByID(ctx context.Context, id int) (*domain.Blog, error) {
	var blog domain.Blog
	err := bg.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		First(&blog, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "LOG NOT FOUND IN ARCHIVE.")
		}
		return nil, err
	}
	return &blog, nil
}

// All retrieves all blogs, newest first, with their authors and likes.
func (bg *blogGorm) All(ctx context.Context) ([]domain.Blog, error) {
	var blogs []domain.Blog
	err := bg.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		Order("created_at DESC").
		Find(&blogs).Error
	if err != nil {
		return nil, err
	}
	return blogs, nil
}

// Create stores the data from the Blog object in a new database record.
func (bg *blogGorm) Create(ctx context.Context, blog *domain.Blog) error {
	return bg.db.WithContext(ctx).Create(blog).Error
}

// Update saves changes to an existing blog record in the database.
func (bg *blogGorm) Update(ctx context.Context, blog *domain.Blog) error {
	return bg.db.WithContext(ctx).Save(blog).Error
}

// Delete permanently removes the blog and its likes. Both go in one
// transaction so a failure cannot leave orphaned likes behind.
func (bg *blogGorm) Delete(ctx context.Context, blog *domain.Blog) error {
	return bg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_id = ?", blog.ID).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Blog{}, "id = ?", blog.ID).Error
	})
}
