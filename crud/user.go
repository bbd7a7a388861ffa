package crud

import (
	"context"
	"crypto/rand"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gamerlog/domain"
	"gamerlog/errs"
)

// resetCodeTTL is how long a password-reset code stays valid.
const resetCodeTTL = time.Hour

// UserService manages Users. It also contains the part of the authentication
// system that handles password hashing and the password-reset code flow; the
// http package deals with tokens and headers. It implements the
// domain.UserService interface.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	pepper     string
	emailRegex *regexp.Regexp
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type userGorm struct {
	db *gorm.DB
}

// NewUserService returns an instance of UserService.
func NewUserService(db *gorm.DB, pepper string) *UserService {
	return &UserService{
		userValidator{
			pepper:     pepper,
			emailRegex: regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,16}$`),
			userGorm: userGorm{
				db: db,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// Authenticate checks a submitted email address and password for existence and
// correctness. Both failure modes return the same message so that the response
// does not reveal which accounts exist.
func (uv *userValidator) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	found, err := uv.userGorm.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return nil, errs.Errorf(errs.EINVALID, "Invalid credentials")
		}
		return nil, err
	}
	err = bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password+uv.pepper))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return nil, errs.Errorf(errs.EINVALID, "Invalid credentials")
		}
		return nil, err
	}
	return found, nil
}

// Create runs validations needed for creating new User database records.
func (uv *userValidator) Create(ctx context.Context, user *domain.User) error {
	err := runUserValFns(user,
		uv.nameRequired,
		uv.categoryRequired,
		uv.passwordRequired,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.emailIsAvail(ctx),
		uv.phoneRequired,
		uv.phoneIsAvail(ctx))
	if err != nil {
		return err
	}
	return uv.userGorm.Create(ctx, user)
}

// Update runs validations needed for updating a User record in the database.
// It will hash a password if one is provided (and will not complain if none is).
func (uv *userValidator) Update(ctx context.Context, user *domain.User) error {
	err := runUserValFns(user,
		uv.nameRequired,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.emailIsAvail(ctx),
		uv.phoneRequired,
		uv.phoneIsAvail(ctx))
	if err != nil {
		return err
	}
	return uv.userGorm.Update(ctx, user)
}

// IssueResetCode generates a six-digit reset code for the account behind the
// email address, stores it with an expiry on the user record and returns it,
// so the caller can mail it out.
func (uv *userValidator) IssueResetCode(ctx context.Context, email string) (string, error) {
	user, err := uv.userGorm.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", err
	}
	code, err := generateResetCode()
	if err != nil {
		return "", err
	}
	expires := time.Now().Add(resetCodeTTL)
	user.OTP = &code
	user.OTPExpires = &expires
	if err := uv.userGorm.Update(ctx, user); err != nil {
		return "", err
	}
	return code, nil
}

// VerifyResetCode checks a submitted reset code against the stored one.
func (uv *userValidator) VerifyResetCode(ctx context.Context, email, code string) error {
	_, err := uv.userWithValidCode(ctx, email, code)
	return err
}

// ResetPassword trades a valid reset code for a new password and clears the
// code, so it cannot be replayed.
func (uv *userValidator) ResetPassword(ctx context.Context, email, code, password string) error {
	user, err := uv.userWithValidCode(ctx, email, code)
	if err != nil {
		return err
	}
	user.Password = password
	err = runUserValFns(user,
		uv.passwordRequired,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired)
	if err != nil {
		return err
	}
	user.OTP = nil
	user.OTPExpires = nil
	return uv.userGorm.Update(ctx, user)
}

// userWithValidCode looks the user up and makes sure the submitted reset code
// matches the stored one and has not expired yet.
func (uv *userValidator) userWithValidCode(ctx context.Context, email, code string) (*domain.User, error) {
	user, err := uv.userGorm.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user.OTP == nil || user.OTPExpires == nil || *user.OTP != strings.TrimSpace(code) {
		return nil, errs.Errorf(errs.EINVALID, "Invalid or expired code")
	}
	if time.Now().After(*user.OTPExpires) {
		return nil, errs.Errorf(errs.EINVALID, "Invalid or expired code")
	}
	return user, nil
}

// runUserValFns runs any number of functions of type userValFn on the passed in User object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runUserValFns(user *domain.User, fns ...userValFn) error {
	for _, fn := range fns {
		if err := fn(user); err != nil {
			return err
		}
	}
	return nil
}

// A userValFn is any function that takes in a pointer to a domain.User object and returns an error.
type userValFn func(user *domain.User) error

// nameRequired makes sure that the display name is not the empty string.
func (uv *userValidator) nameRequired(user *domain.User) error {
	if strings.TrimSpace(user.Name) == "" {
		return errs.Errorf(errs.EINVALID, "A name is required.")
	}
	return nil
}

// categoryRequired makes sure that a faction category was picked.
func (uv *userValidator) categoryRequired(user *domain.User) error {
	if strings.TrimSpace(user.Category) == "" {
		return errs.Errorf(errs.EINVALID, "A category is required.")
	}
	return nil
}

// emailFormat makes sure that a provided email address matches a predefined regex pattern.
func (uv *userValidator) emailFormat(user *domain.User) error {
	if user.Email == "" {
		return nil
	}
	if !uv.emailRegex.MatchString(user.Email) {
		return errs.Errorf(errs.EINVALID, "The email address is invalid.")
	}
	return nil
}

// emailIsAvail makes sure that a provided email address is not yet taken.
func (uv *userValidator) emailIsAvail(ctx context.Context) userValFn {
	return func(user *domain.User) error {
		existing, err := uv.userGorm.ByEmail(ctx, user.Email)
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			// Address is not taken.
			return nil
		}
		if err != nil {
			return err
		}
		if user.ID != existing.ID {
			return errs.Errorf(errs.EINVALID, "User already exists with this email or phone")
		}
		return nil
	}
}

// emailNormalize converts the email to all lowercase and trims its whitespaces.
func (uv *userValidator) emailNormalize(user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	user.Email = strings.TrimSpace(user.Email)
	return nil
}

// emailRequired makes sure that the email is not the empty string.
func (uv *userValidator) emailRequired(user *domain.User) error {
	if user.Email == "" {
		return errs.Errorf(errs.EINVALID, "An email address is required.")
	}
	return nil
}

// phoneRequired makes sure that the phone number is not the empty string.
func (uv *userValidator) phoneRequired(user *domain.User) error {
	user.Phone = strings.TrimSpace(user.Phone)
	if user.Phone == "" {
		return errs.Errorf(errs.EINVALID, "A phone number is required.")
	}
	return nil
}

// phoneIsAvail makes sure that a provided phone number is not yet taken.
func (uv *userValidator) phoneIsAvail(ctx context.Context) userValFn {
	return func(user *domain.User) error {
		existing, err := uv.userGorm.ByPhone(ctx, user.Phone)
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return nil
		}
		if err != nil {
			return err
		}
		if user.ID != existing.ID {
			return errs.Errorf(errs.EINVALID, "User already exists with this email or phone")
		}
		return nil
	}
}

// passwordBcrypt hashes a user's password with a predefined pepper.
// It bcrypts it, if the Password field is not the empty string.
// It then clears the password on the user object in memory for security reasons.
func (uv *userValidator) passwordBcrypt(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	pwBytes := []byte(user.Password + uv.pepper)
	hashedBytes, err := bcrypt.GenerateFromPassword(pwBytes, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedBytes)
	user.Password = ""
	return nil
}

// passwordHashRequired makes sure that the user's password hash is not the empty string.
func (uv *userValidator) passwordHashRequired(user *domain.User) error {
	if user.PasswordHash == "" {
		return errs.Errorf(errs.EINVALID, "A password is required.")
	}
	return nil
}

// passwordMinLength makes sure that the user's password is at least 8 characters long.
func (uv *userValidator) passwordMinLength(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	if utf8.RuneCountInString(user.Password) < 8 {
		return errs.Errorf(errs.EINVALID, "The password must have at least 8 characters.")
	}
	return nil
}

// passwordRequired makes sure that the user's password is not the empty string.
func (uv *userValidator) passwordRequired(user *domain.User) error {
	if user.Password == "" {
		return errs.Errorf(errs.EINVALID, "A password is required.")
	}
	return nil
}

// ByID retrieves a User database record by ID.
func (ug *userGorm) ByID(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "User not found")
		}
		return nil, err
	}
	return &user, nil
}

// ByEmail retrieves a User database record by email address.
func (ug *userGorm) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "User not found")
		}
		return nil, err
	}
	return &user, nil
}

// ByPhone retrieves a User database record by phone number.
func (ug *userGorm) ByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, "phone = ?", phone).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "User not found")
		}
		return nil, err
	}
	return &user, nil
}

// Create stores the data from the User object in a new database record.
func (ug *userGorm) Create(ctx context.Context, user *domain.User) error {
	return ug.db.WithContext(ctx).Create(user).Error
}

// Update saves changes to an existing user record in the database.
func (ug *userGorm) Update(ctx context.Context, user *domain.User) error {
	return ug.db.WithContext(ctx).Save(user).Error
}

// generateResetCode returns a random six-digit code using crypto/rand.
func generateResetCode() (string, error) {
	const digits = "0123456789"
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = digits[int(b[i])%len(digits)]
	}
	return string(b), nil
}
