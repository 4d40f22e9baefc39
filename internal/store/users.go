// internal/store/users.go
//
// Player accounts. Passwords are bcrypt hashes; the solve counters and the
// perfect-solve streak are maintained by History.

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUsernameTaken is returned by Create for a name already in use (any case).
	ErrUsernameTaken = errors.New("username taken")
	// ErrBadCredentials is returned by Authenticate for an unknown user or wrong password.
	ErrBadCredentials = errors.New("invalid username or password")
)

// User is an account with its solve stats.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	CreatedAt       time.Time `json:"createdAt"`
	LevelsSolved    int       `json:"levelsSolved"`
	PerfectSolves   int       `json:"perfectSolves"`
	AlternateSolves int       `json:"alternateSolves"`
	Streak          int       `json:"streak"`

	passwordHash string
}

// Owner returns the user as a session owner.
func (u *User) Owner() Owner { return Owner{UserID: u.ID} }

// Users reads and creates accounts.
type Users struct {
	db *sql.DB
}

// NewUsers wraps db.
func NewUsers(db *sql.DB) *Users { return &Users{db: db} }

// Create validates the credentials, hashes the password and stores a new user.
func (us *Users) Create(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if err := ValidateCredentials(username, password); err != nil {
		return nil, err
	}
	if _, err := us.ByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		passwordHash: string(h),
	}
	if _, err := us.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.passwordHash, u.CreatedAt.Format(time.RFC3339)); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// Authenticate returns the user when password matches.
func (us *Users) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := us.ByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

const userColumns = `id, username, password_hash, created_at, levels_solved, perfect_solves, alternate_solves, streak`

// ByUsername looks a user up case-insensitively.
func (us *Users) ByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(us.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(username)=lower(?)`, username))
}

// ByID looks a user up by ID.
func (us *Users) ByID(ctx context.Context, id string) (*User, error) {
	return scanUser(us.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id))
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	err := row.Scan(&u.ID, &u.Username, &u.passwordHash, &created,
		&u.LevelsSolved, &u.PerfectSolves, &u.AlternateSolves, &u.Streak)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// ValidateCredentials enforces 3-24 character usernames of letters, digits
// and underscores, and 8-100 character passwords.
func ValidateCredentials(username, password string) error {
	if len(username) < 3 || len(username) > 24 {
		return errors.New("username must be 3-24 chars")
	}
	for _, r := range username {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(password) < 8 || len(password) > 100 {
		return errors.New("password must be 8-100 chars")
	}
	return nil
}
