package crud

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gamerlog/domain"
)

// testDB opens a throwaway sqlite database in a temp dir and migrates the
// schema, so every test runs against a real gorm connection.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Blog{},
		&domain.Like{},
		&domain.Message{},
	))
	return db
}

// seedUser inserts a user directly, sidestepping the validation chain.
func seedUser(t *testing.T, db *gorm.DB, name string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         name,
		Email:        name + "@example.com",
		Phone:        "555-" + name,
		Category:     "RPG",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// seedBlog inserts a blog directly, sidestepping the validation chain.
func seedBlog(t *testing.T, db *gorm.DB, authorID int, title string) *domain.Blog {
	t.Helper()
	blog := &domain.Blog{
		Title:        title,
		Description:  "a description",
		GameImage:    "img.png",
		GameCategory: "RPG",
		AuthorID:     authorID,
	}
	require.NoError(t, db.Create(blog).Error)
	return blog
}
