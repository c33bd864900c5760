// Package store provides SQLite-backed persistence for generated artifacts,
// brainstorm messages, and user accounts.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"pmtoolkit/pkg/logx"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store wraps the database connection and its operations.
type Store struct {
	db     *sql.DB
	logger *logx.Logger
}

// Open opens (creating if needed) the SQLite database at dbPath and applies
// the schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf(
		"file:%s?_foreign_keys=ON&_journal_mode=WAL&_busy_timeout=5000",
		dbPath,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	logger := logx.NewLogger("store")
	logger.Info("database initialized: %s", dbPath)
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ArtifactRecord is one persisted pipeline output.
type ArtifactRecord struct {
	ID            string    `json:"id"`
	Owner         string    `json:"owner"`
	Subject       string    `json:"subject"`
	SourceInput   string    `json:"source_input"`
	Output        string    `json:"output"`
	IsNewCreation bool      `json:"is_new_creation"`
	CreatedAt     time.Time `json:"created_at"`
}

// SaveArtifact inserts one artifact record and returns its ID. The insert is
// a single attempt; callers treat failure as a non-fatal warning.
func (s *Store) SaveArtifact(rec *ArtifactRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO artifacts (id, owner, subject, source_input, output, is_new_creation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Owner, rec.Subject, rec.SourceInput, rec.Output, rec.IsNewCreation, rec.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save artifact: %w", err)
	}
	return rec.ID, nil
}

// ListArtifacts returns the owner's artifacts, newest first.
func (s *Store) ListArtifacts(owner string) ([]ArtifactRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, owner, subject, source_input, output, is_new_creation, created_at
		 FROM artifacts WHERE owner = ? ORDER BY created_at DESC, rowid DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ArtifactRecord
	for rows.Next() {
		var rec ArtifactRecord
		if err := rows.Scan(&rec.ID, &rec.Owner, &rec.Subject, &rec.SourceInput,
			&rec.Output, &rec.IsNewCreation, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MessageRecord is one persisted brainstorm chat message.
type MessageRecord struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Content   string    `json:"content"`
	FromUser  bool      `json:"from_user"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveMessage inserts one brainstorm message. Single attempt, failure is a
// non-fatal warning for callers.
func (s *Store) SaveMessage(rec *MessageRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO brainstorm_messages (id, owner, content, from_user, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Owner, rec.Content, rec.FromUser, rec.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save message: %w", err)
	}
	return rec.ID, nil
}

// ListMessages returns the owner's brainstorm messages, newest first.
func (s *Store) ListMessages(owner string) ([]MessageRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, owner, content, from_user, created_at
		 FROM brainstorm_messages WHERE owner = ? ORDER BY created_at DESC, rowid DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []MessageRecord
	for rows.Next() {
		var rec MessageRecord
		if err := rows.Scan(&rec.ID, &rec.Owner, &rec.Content, &rec.FromUser, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UserRecord is one registered account.
type UserRecord struct {
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CreateUser inserts a user account. The password hash is the encoded scrypt
// form produced by pkg/auth.
func (s *Store) CreateUser(email, passwordHash string) error {
	_, err := s.db.Exec(
		`INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)`,
		email, passwordHash, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", email, err)
	}
	return nil
}

// GetUser looks up an account by email.
func (s *Store) GetUser(email string) (*UserRecord, error) {
	var rec UserRecord
	err := s.db.QueryRow(
		`SELECT email, password_hash, created_at FROM users WHERE email = ?`,
		email,
	).Scan(&rec.Email, &rec.PasswordHash, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", email, err)
	}
	return &rec, nil
}
