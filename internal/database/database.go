package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-acs-bot/internal/logger"
	"go-acs-bot/internal/models"

	"golang.org/x/crypto/bcrypt"

	_ "github.com/mattn/go-sqlite3"
)

// ErrUserNotFound is returned by the user lookups
var ErrUserNotFound = errors.New("user not found")

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// InitDB initializes the database connection and creates tables
func InitDB(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// sqlite serializes writers anyway
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	wrapper := &DB{db}

	if err := wrapper.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return wrapper, nil
}

func (db *DB) createTables() error {
	tables := []string{
		// Audit trail of bot commands; arguments are never stored
		`CREATE TABLE IF NOT EXISTS command_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bot TEXT NOT NULL,
			chat_id TEXT NOT NULL,
			role TEXT NOT NULL,
			command TEXT NOT NULL,
			outcome TEXT NOT NULL,
			details TEXT,
			trace_id TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_command_logs_created ON command_logs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_command_logs_bot_chat ON command_logs(bot, chat_id)`,

		// Operators of the HTTP API
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			role TEXT DEFAULT 'admin',
			last_login DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table for runtime state
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w\nSQL: %s", err, table)
		}
	}

	return nil
}

// ============== Command Log Operations ==============

// LogCommand appends one audit entry
func (db *DB) LogCommand(ctx context.Context, entry models.CommandLog) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO command_logs (bot, chat_id, role, command, outcome, details, trace_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.Bot, entry.ChatID, string(entry.Role), entry.Command, entry.Outcome, entry.Details, entry.TraceID, createdAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert command log: %w", err)
	}
	return nil
}

// LogFilter narrows GetLogs. Zero values match everything.
type LogFilter struct {
	Bot     string
	ChatID  string
	Outcome string
	Since   time.Time
	Limit   int
	Offset  int
}

// GetLogs retrieves audit entries, newest first, with the total matching count
func (db *DB) GetLogs(ctx context.Context, f LogFilter) ([]*models.CommandLog, int64, error) {
	var conditions []string
	var args []interface{}

	if f.Bot != "" {
		conditions = append(conditions, "bot = ?")
		args = append(args, f.Bot)
	}
	if f.ChatID != "" {
		conditions = append(conditions, "chat_id = ?")
		args = append(args, f.ChatID)
	}
	if f.Outcome != "" && f.Outcome != "all" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, f.Outcome)
	}
	if !f.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, f.Since.UTC())
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM command_logs "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count command logs: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`
		SELECT id, bot, chat_id, role, command, outcome, details, trace_id, created_at
		FROM command_logs %s
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, whereClause)

	rows, err := db.QueryContext(ctx, query, append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query command logs: %w", err)
	}
	defer rows.Close()

	logs := []*models.CommandLog{}
	for rows.Next() {
		var l models.CommandLog
		var role string
		var details, traceID sql.NullString
		if err := rows.Scan(&l.ID, &l.Bot, &l.ChatID, &role, &l.Command, &l.Outcome, &details, &traceID, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		l.Role = models.Role(role)
		l.Details = details.String
		l.TraceID = traceID.String
		logs = append(logs, &l)
	}

	return logs, total, rows.Err()
}

// PruneLogs deletes entries older than before and reports how many went
func (db *DB) PruneLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM command_logs WHERE created_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune command logs: %w", err)
	}
	return res.RowsAffected()
}

// ============== Settings ==============

// GetSetting retrieves a value by key, or "" when unset
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SaveSetting saves or updates a value
func (db *DB) SaveSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// ============== Users ==============

// GetUserByUsername retrieves a user by username
func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	query := `SELECT id, username, password, role, last_login, created_at, updated_at FROM users WHERE username = ?`
	var user models.User
	var lastLogin sql.NullTime

	err := db.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &user.Password, &user.Role, &lastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}

	return &user, nil
}

// UpdateUser updates a user's information
func (db *DB) UpdateUser(user *models.User) error {
	_, err := db.Exec(`
		UPDATE users SET
			password = ?,
			role = ?,
			last_login = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		user.Password, user.Role, user.LastLogin, user.ID,
	)
	return err
}

// HashPassword hashes a password using bcrypt
func (db *DB) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// EnsureDefaultAdmin creates the API admin on first start
func (db *DB) EnsureDefaultAdmin(username, password string) error {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := db.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (username, password, role, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		username, hashedPassword, "admin",
	)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info().Str("username", username).Msg("default API admin created")
	return nil
}
