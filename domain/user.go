package domain

import (
	"context"
	"time"
)

// User is an identity record. The password hash and the reset code never leave
// the server, json encoding hides them. ProfilePic holds an inline base64
// image or a URL, the client sends it as-is.
type User struct {
	ID         int    `json:"id" gorm:"primaryKey"`
	Name       string `json:"name"`
	Phone      string `json:"phone" gorm:"uniqueIndex"`
	Email      string `json:"email" gorm:"uniqueIndex"`
	Category   string `json:"category"`
	ProfilePic string `json:"profilePic"`

	// Password is only ever populated from an incoming request body.
	// The validation chain bcrypts it into PasswordHash and clears it.
	Password     string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-"`

	// One-time password-reset code and its expiry. Nil when no reset
	// is in flight.
	OTP        *string    `json:"-"`
	OTPExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	ByID(ctx context.Context, id int) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// Password-reset flow: issue a short-lived code for the account,
	// check it, and finally trade it for a new password.
	IssueResetCode(ctx context.Context, email string) (string, error)
	VerifyResetCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, password string) error
}
