// Package auth manages user accounts and login sessions. New accounts start
// at level 0 and cannot act until an administrator approves them; approval
// power starts at level 4.
package auth

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"salescope/internal/db"
	"salescope/internal/domain"
	"salescope/internal/events"
)

// Auth levels. Pending accounts hold level 0; approval grants Member.
const (
	LevelPending = 0
	LevelMember  = 1
	LevelManager = 2
	LevelAdmin   = 4
)

// SessionTTL is how long a login token stays valid
const SessionTTL = 12 * time.Hour

// Service wraps user and session operations on one database
type Service struct {
	db *db.DB
}

// New creates an auth service
func New(database *db.DB) *Service {
	return &Service{db: database}
}

// Register creates a pending account. Usernames and emails are unique among
// live accounts; the password is stored as a bcrypt hash.
func (s *Service) Register(username, password, email string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, &domain.ValidationError{Field: "username", Reason: "is required"}
	}
	if len(password) < 8 {
		return 0, &domain.ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var taken int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM users
		WHERE is_deleted = 0 AND (username = ? OR (user_email IS NOT NULL AND user_email = ?))
	`, username, email).Scan(&taken)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing users: %w", err)
	}
	if taken > 0 {
		return 0, &domain.ConflictError{Kind: "user", Key: username}
	}

	res, err := tx.Exec(`
		INSERT INTO users (username, password_hash, user_email, auth_level)
		VALUES (?, ?, ?, ?)
	`, username, string(hash), nullableEmail(email), LevelPending)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	userID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	ew := events.NewWriter(s.db.DB)
	if err := ew.Log(tx, userID, "user", userID, "user.registered", map[string]interface{}{
		"username": username,
	}); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit registration: %w", err)
	}
	return userID, nil
}

func nullableEmail(email string) interface{} {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	return email
}

// ErrBadCredentials is returned for both unknown usernames and wrong
// passwords so a caller cannot probe which accounts exist.
var ErrBadCredentials = fmt.Errorf("invalid username or password")

// ErrPendingApproval is returned when a valid login hits an unapproved account
var ErrPendingApproval = fmt.Errorf("account is pending approval")

// Authenticate verifies credentials and opens a session, returning the token
func (s *Service) Authenticate(username, password string) (string, *domain.User, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		if _, ok := err.(*domain.NotFoundError); ok {
			return "", nil, ErrBadCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrBadCredentials
	}
	if user.AuthLevel < LevelMember {
		return "", nil, ErrPendingApproval
	}

	token := uuid.NewString()
	expires := time.Now().UTC().Add(SessionTTL).Format(time.RFC3339)
	if _, err := s.db.Exec(
		"INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)",
		token, user.UserID, expires); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	return token, user, nil
}

// ErrSessionExpired is returned for tokens past their expiry
var ErrSessionExpired = fmt.Errorf("session expired")

// Resolve maps a session token back to its user, enforcing expiry
func (s *Service) Resolve(token string) (*domain.User, error) {
	var userID int64
	var expiresAt string
	err := s.db.QueryRow(
		"SELECT user_id, expires_at FROM sessions WHERE token = ?", token,
	).Scan(&userID, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	expiry, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil || time.Now().UTC().After(expiry) {
		s.db.Exec("DELETE FROM sessions WHERE token = ?", token)
		return nil, ErrSessionExpired
	}

	return s.Get(userID)
}

// Logout discards a session token
func (s *Service) Logout(token string) error {
	if _, err := s.db.Exec("DELETE FROM sessions WHERE token = ?", token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Approve raises a pending account to the given level. The approver must
// hold admin level themselves.
func (s *Service) Approve(approverID, userID int64, level int) error {
	if level < LevelMember || level > LevelAdmin {
		return &domain.ValidationError{Field: "level",
			Reason: fmt.Sprintf("must be between %d and %d", LevelMember, LevelAdmin)}
	}

	approver, err := s.Get(approverID)
	if err != nil {
		return err
	}
	if approver.AuthLevel < LevelAdmin {
		return fmt.Errorf("user %s (level %d) cannot approve accounts", approver.Username, approver.AuthLevel)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE users SET auth_level = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ','now')
		WHERE user_id = ? AND is_deleted = 0
	`, level, userID)
	if err != nil {
		return fmt.Errorf("failed to approve user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &domain.NotFoundError{Kind: "user", ID: userID}
	}

	ew := events.NewWriter(s.db.DB)
	if err := ew.Log(tx, approverID, "user", userID, "user.approved", map[string]interface{}{
		"auth_level": level,
	}); err != nil {
		return err
	}

	return tx.Commit()
}

// Get returns one user by id
func (s *Service) Get(userID int64) (*domain.User, error) {
	return s.scanUser(s.db.QueryRow(`
		SELECT user_id, username, password_hash, user_email, auth_level,
		       created_at, updated_at, is_deleted
		FROM users WHERE user_id = ?
	`, userID), userID)
}

// GetByUsername returns the live user with the given username
func (s *Service) GetByUsername(username string) (*domain.User, error) {
	return s.scanUser(s.db.QueryRow(`
		SELECT user_id, username, password_hash, user_email, auth_level,
		       created_at, updated_at, is_deleted
		FROM users WHERE username = ? AND is_deleted = 0
	`, username), 0)
}

func (s *Service) scanUser(row *sql.Row, id int64) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.UserID, &user.Username, &user.PasswordHash, &user.UserEmail,
		&user.AuthLevel, &user.CreatedAt, &user.UpdatedAt, &user.IsDeleted)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Kind: "user", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
