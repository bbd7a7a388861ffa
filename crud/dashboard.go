package crud

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"gamerlog/domain"
)

// DashboardService derives the aggregate usage statistics. It holds no state
// besides the database connection, every number is computed per request.
// It implements the domain.DashboardService interface.
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService returns an instance of DashboardService.
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

var _ domain.DashboardService = &DashboardService{}

// Stats collects the dashboard numbers: total users and blogs, users per
// faction category, the ten biggest game categories, blogs posted per day
// over the last seven days, and the five most liked blogs.
func (ds *DashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	db := ds.db.WithContext(ctx)
	stats := &domain.DashboardStats{
		UsersByCategory: []domain.CategoryValue{},
		BlogsByCategory: []domain.CategoryCount{},
		BlogsByDate:     []domain.DateCount{},
		TopBlogs:        []domain.BlogLikes{},
	}

	if err := db.Model(&domain.User{}).Count(&stats.Summary.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Blog{}).Count(&stats.Summary.TotalBlogs).Error; err != nil {
		return nil, err
	}

	err := db.Model(&domain.User{}).
		Select("category AS name, count(*) AS value").
		Group("category").
		Scan(&stats.UsersByCategory).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&domain.Blog{}).
		Select("game_category AS name, count(*) AS count").
		Group("game_category").
		Order("count DESC").
		Limit(10).
		Scan(&stats.BlogsByCategory).Error
	if err != nil {
		return nil, err
	}

	blogsByDate, err := ds.blogsByDate(ctx)
	if err != nil {
		return nil, err
	}
	stats.BlogsByDate = blogsByDate

	err = db.Model(&domain.Blog{}).
		Select("blogs.id, blogs.title, count(likes.id) AS likes_count").
		Joins("LEFT JOIN likes ON likes.blog_id = blogs.id").
		Group("blogs.id").
		Order("likes_count DESC").
		Limit(5).
		Scan(&stats.TopBlogs).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// blogsByDate buckets the creation times of the last seven days of blogs per
// calendar day. The bucketing happens in Go so the query stays free of
// dialect-specific date formatting.
func (ds *DashboardService) blogsByDate(ctx context.Context) ([]domain.DateCount, error) {
	since := time.Now().AddDate(0, 0, -7)
	var createdAts []time.Time
	err := ds.db.WithContext(ctx).
		Model(&domain.Blog{}).
		Where("created_at >= ?", since).
		Pluck("created_at", &createdAts).Error
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int64)
	for _, t := range createdAts {
		byDay[t.Format("2006-01-02")]++
	}
	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	counts := make([]domain.DateCount, 0, len(days))
	for _, day := range days {
		counts = append(counts, domain.DateCount{Date: day, Count: byDay[day]})
	}
	return counts, nil
}
