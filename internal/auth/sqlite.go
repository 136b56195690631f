package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS password_resets (
	token      TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id),
	expires_at TEXT NOT NULL
);`

// SQLiteService is a local identity provider backed by a SQLite file. It
// stands in for the remote backend when the game runs offline, with the same
// contract: bcrypt password hashes, JWT session tokens, reset tokens logged
// instead of mailed.
type SQLiteService struct {
	db        *sql.DB
	jwtSecret []byte
	logger    zerolog.Logger
	tokenTTL  time.Duration
}

// OpenSQLite opens (creating if needed) the accounts database at path.
func OpenSQLite(path string, jwtSecret []byte, logger zerolog.Logger) (*SQLiteService, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open accounts db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteService{
		db:        db,
		jwtSecret: jwtSecret,
		logger:    logger,
		tokenTTL:  14 * 24 * time.Hour,
	}, nil
}

// Close closes the underlying database
func (s *SQLiteService) Close() error {
	return s.db.Close()
}

func (s *SQLiteService) Login(ctx context.Context, email, password string) (*Identity, error) {
	email = normalizeEmail(email)

	var id, username, hash string
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE email = ?`, email)
	if err := row.Scan(&id, &username, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.signToken(id, username)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("user", username).Msg("login")
	return &Identity{ID: id, Username: username, Email: email, Token: token}, nil
}

func (s *SQLiteService) SignUp(ctx context.Context, username, email, password string) (*Identity, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if err := validateSignUp(username, email, password); err != nil {
		return nil, err
	}

	var exists int
	_ = s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE email = ?`, email).Scan(&exists)
	if exists == 1 {
		return nil, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id := randomID()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?,?,?,?,?)`,
		id, username, email, string(hash), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	token, err := s.signToken(id, username)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user", username).Msg("account created")
	return &Identity{ID: id, Username: username, Email: email, Token: token}, nil
}

func (s *SQLiteService) RequestReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	var userID string
	row := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, email)
	if err := row.Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUnknownEmail
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	token := randomID()
	expires := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO password_resets (token, user_id, expires_at) VALUES (?,?,?)`,
		token, userID, expires); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// There is no mailer locally; the token goes to the log instead.
	s.logger.Info().Str("email", email).Str("token", token).Msg("password reset token issued")
	return nil
}

func (s *SQLiteService) signToken(id, username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func validateSignUp(username, email, password string) error {
	if len(username) < 3 || len(username) > 24 {
		return errors.New("auth: username must be 3-24 characters")
	}
	for _, r := range username {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("auth: username may use letters, numbers, underscore only")
		}
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return errors.New("auth: invalid email address")
	}
	if len(password) < 8 || len(password) > 100 {
		return fmt.Errorf("%w: password must be 8-100 characters", ErrWeakPassword)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
