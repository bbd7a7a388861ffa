package crud

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamerlog/domain"
	"gamerlog/errs"
)

func newTestUser(name string) *domain.User {
	return &domain.User{
		Name:     name,
		Email:    name + "@example.com",
		Phone:    "555-" + name,
		Category: "RPG",
		Password: "hunter2hunter2",
	}
}

func TestUserCreateAndAuthenticate(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper")
	ctx := context.Background()

	user := newTestUser("alice")
	require.NoError(t, us.Create(ctx, user))
	assert.NotZero(t, user.ID)
	// The plaintext password never survives the validation chain.
	assert.Empty(t, user.Password)
	assert.NotEmpty(t, user.PasswordHash)

	found, err := us.Authenticate(ctx, "Alice@Example.com ", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = us.Authenticate(ctx, "alice@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	// An unknown account fails the same way as a wrong password.
	_, err = us.Authenticate(ctx, "nobody@example.com", "hunter2hunter2")
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestUserCreateValidation(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper")
	ctx := context.Background()

	t.Run("ShortPassword", func(t *testing.T) {
		user := newTestUser("bob")
		user.Password = "short"
		err := us.Create(ctx, user)
		require.Error(t, err)
		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	})

	t.Run("BadEmail", func(t *testing.T) {
		user := newTestUser("bob")
		user.Email = "not-an-email"
		err := us.Create(ctx, user)
		require.Error(t, err)
		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		first := newTestUser("carol")
		require.NoError(t, us.Create(ctx, first))

		dupe := newTestUser("carol2")
		dupe.Email = first.Email
		err := us.Create(ctx, dupe)
		require.Error(t, err)
		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	})

	t.Run("DuplicatePhone", func(t *testing.T) {
		first := newTestUser("dave")
		require.NoError(t, us.Create(ctx, first))

		dupe := newTestUser("dave2")
		dupe.Phone = first.Phone
		err := us.Create(ctx, dupe)
		require.Error(t, err)
		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	})
}

func TestPasswordResetFlow(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper")
	ctx := context.Background()

	user := newTestUser("alice")
	require.NoError(t, us.Create(ctx, user))

	code, err := us.IssueResetCode(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, code, 6)

	// Wrong code gets rejected, the right one verifies without consuming.
	err = us.VerifyResetCode(ctx, "alice@example.com", "000000x")
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	require.NoError(t, us.VerifyResetCode(ctx, "alice@example.com", code))
	require.NoError(t, us.VerifyResetCode(ctx, "alice@example.com", code))

	require.NoError(t, us.ResetPassword(ctx, "alice@example.com", code, "new-password-123"))

	// The new password works, the old one is dead, the code is spent.
	_, err = us.Authenticate(ctx, "alice@example.com", "new-password-123")
	require.NoError(t, err)
	_, err = us.Authenticate(ctx, "alice@example.com", "hunter2hunter2")
	require.Error(t, err)
	err = us.ResetPassword(ctx, "alice@example.com", code, "another-password")
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestPasswordResetExpiredCode(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper")
	ctx := context.Background()

	user := newTestUser("alice")
	require.NoError(t, us.Create(ctx, user))

	code, err := us.IssueResetCode(ctx, "alice@example.com")
	require.NoError(t, err)

	// Age the code past its expiry.
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&domain.User{}).
		Where("id = ?", user.ID).
		Update("otp_expires", expired).Error)

	err = us.VerifyResetCode(ctx, "alice@example.com", code)
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestIssueResetCodeUnknownAccount(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper")

	_, err := us.IssueResetCode(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}
