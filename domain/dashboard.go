package domain

import "context"

// DashboardStats is the aggregate usage snapshot shown on the admin dashboard.
// Everything in it is derived by aggregation queries at request time.
type DashboardStats struct {
	Summary         Summary         `json:"summary"`
	UsersByCategory []CategoryValue `json:"usersByCategory"`
	BlogsByCategory []CategoryCount `json:"blogsByCategory"`
	BlogsByDate     []DateCount     `json:"blogsByDate"`
	TopBlogs        []BlogLikes     `json:"topBlogs"`
}

type Summary struct {
	TotalUsers int64 `json:"totalUsers"`
	TotalBlogs int64 `json:"totalBlogs"`
}

type CategoryValue struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type DateCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type BlogLikes struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	LikesCount int64  `json:"likesCount"`
}

type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
}
