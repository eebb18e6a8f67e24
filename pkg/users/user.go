package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// User is an authenticatable principal.
type User struct {
	// ID is assigned by the repository on Create and never changes.
	ID string

	// Email is the lookup key for Basic credentials. It is not unique.
	Email string

	// HashedPassword is the bcrypt hash of the user's password.
	HashedPassword string

	// SessionToken correlates a live session with this user. Nil until
	// a session is established.
	SessionToken *string

	// ResetToken is used by out-of-band password reset flows. Nil by default.
	ResetToken *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsValidPassword reports whether password verifies against the stored hash.
func (u *User) IsValidPassword(password string) bool {
	if u == nil || u.HashedPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) == nil
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.SessionToken = cloneString(u.SessionToken)
	c.ResetToken = cloneString(u.ResetToken)
	return &c
}

// String renders the user without any credential material.
func (u *User) String() string {
	if u == nil {
		return "User<nil>"
	}
	return fmt.Sprintf("User: id=%s", u.ID)
}

// LogValue implements slog.LogValuer so that logging a User never emits
// the password hash or either token.
func (u *User) LogValue() slog.Value {
	if u == nil {
		return slog.StringValue("<nil>")
	}
	return slog.GroupValue(
		slog.String("id", u.ID),
		slog.String("email", u.Email),
	)
}

// HashPassword returns the bcrypt hash of password for storage.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Filter selects users by exact field value. Every entry must match.
type Filter map[string]string

// Filter keys understood by every Repository.
const (
	FieldID           = "id"
	FieldEmail        = "email"
	FieldSessionToken = "session_token"
	FieldResetToken   = "reset_token"
)

// Repository stores users and looks them up. Implementations must be safe
// for concurrent use.
type Repository interface {
	// Search returns users matching every entry of the filter, oldest
	// first. An empty filter matches all users. Unknown filter keys are
	// an error.
	Search(ctx context.Context, filter Filter) ([]*User, error)

	// Get returns the user with the given ID.
	Get(ctx context.Context, id string) (*User, error)

	// Create assigns an ID and timestamps and stores the user.
	Create(ctx context.Context, user *User) error

	// Update replaces the stored fields of an existing user.
	Update(ctx context.Context, user *User) error

	// Delete removes a user.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored users.
	Count(ctx context.Context) (int, error)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
