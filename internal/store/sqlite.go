package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to an in-memory database is a fresh database.
	if strings.Contains(dataSourceName, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        external_user_id TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS carousels (
        id TEXT PRIMARY KEY, -- UUID
        user_id INTEGER NOT NULL,
        title TEXT NOT NULL,
        subject TEXT NOT NULL,
        status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'exported')),
        slide_count INTEGER NOT NULL DEFAULT 0,
        language TEXT NOT NULL DEFAULT 'fr',
        content_format TEXT NOT NULL DEFAULT 'bullets',
        content_length TEXT NOT NULL DEFAULT 'auto',
        sources TEXT NOT NULL DEFAULT '',
        hashtags_json TEXT NOT NULL DEFAULT '[]',
        pdf_url TEXT,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE INDEX IF NOT EXISTS idx_carousels_user ON carousels (user_id, created_at);

    CREATE TABLE IF NOT EXISTS slides (
        id TEXT PRIMARY KEY, -- UUID
        carousel_id TEXT NOT NULL,
        slide_number INTEGER NOT NULL,
        type TEXT NOT NULL CHECK (type IN ('cover', 'title', 'content', 'cta', 'subscribe')),
        title TEXT NOT NULL DEFAULT '',
        subtitle TEXT,
        content TEXT,
        bullets_json TEXT, -- JSON array of strings
        stats TEXT,
        is_edited BOOLEAN NOT NULL DEFAULT FALSE,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL,
        FOREIGN KEY (carousel_id) REFERENCES carousels (id)
    );

    CREATE INDEX IF NOT EXISTS idx_slides_carousel ON slides (carousel_id, slide_number);

    CREATE TABLE IF NOT EXISTS user_settings (
        id TEXT PRIMARY KEY, -- UUID
        user_id INTEGER UNIQUE NOT NULL,
        primary_color TEXT NOT NULL,
        show_signature BOOLEAN NOT NULL DEFAULT FALSE,
        signature_name TEXT NOT NULL DEFAULT '',
        cover_alignment TEXT NOT NULL DEFAULT 'centered',
        signature_position TEXT NOT NULL DEFAULT 'bottom-right',
        content_style TEXT NOT NULL DEFAULT 'split',
        show_slide_numbers BOOLEAN NOT NULL DEFAULT TRUE,
        content_alignment TEXT NOT NULL DEFAULT 'centered',
        end_page_title TEXT NOT NULL DEFAULT '',
        end_page_subtitle TEXT NOT NULL DEFAULT '',
        end_page_cta TEXT NOT NULL DEFAULT '',
        end_page_contact TEXT NOT NULL DEFAULT '',
        end_page_image TEXT NOT NULL DEFAULT '',
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE TABLE IF NOT EXISTS subscriptions (
        id TEXT PRIMARY KEY, -- UUID
        user_id INTEGER UNIQUE NOT NULL,
        status TEXT NOT NULL CHECK (status IN ('active', 'inactive')),
        subscription_type TEXT NOT NULL DEFAULT 'lifetime',
        amount_paid INTEGER NOT NULL DEFAULT 0,
        stripe_customer_id TEXT NOT NULL DEFAULT '',
        stripe_payment_intent_id TEXT NOT NULL DEFAULT '',
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE TABLE IF NOT EXISTS subscription_config (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        lifetime_price INTEGER NOT NULL,
        updated_at DATETIME NOT NULL
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods
func (s *SQLiteStore) GetUserByExternalID(externalUserID string) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, external_user_id, password_hash, created_at FROM users WHERE external_user_id = ?", externalUserID).Scan(&user.ID, &user.ExternalUserID, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) GetUserByID(id int64) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, external_user_id, password_hash, created_at FROM users WHERE id = ?", id).Scan(&user.ID, &user.ExternalUserID, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) CreateUser(externalUserID, passwordHash string) (*User, error) {
	res, err := s.db.Exec("INSERT INTO users (external_user_id, password_hash) VALUES (?, ?)", externalUserID, passwordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetUserByID(id)
}
