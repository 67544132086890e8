package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"fundhub/internal/store"
)

// Open opens a SQLite database with the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer; a single pooled connection avoids
	// SQLITE_BUSY under concurrent sends.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// New builds the full repository set on one database handle.
func New(db *sql.DB) store.Stores {
	return store.Stores{
		Users:         NewUserRepo(db),
		Campaigns:     NewCampaignRepo(db),
		Conversations: NewConversationRepo(db),
		Messages:      NewMessageRepo(db),
		Saved:         NewSavedCampaignRepo(db),
	}
}

// Migrate runs idempotent DDL migrations.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			role VARCHAR(20) NOT NULL,
			full_name VARCHAR(100) NOT NULL,
			email VARCHAR(100) NOT NULL,
			hashed_password VARCHAR(255) NOT NULL,
			phone VARCHAR(30) NOT NULL,
			profile_photo TEXT DEFAULT '',
			investment_budget VARCHAR(50) DEFAULT '',
			preferred_categories TEXT DEFAULT '',
			investor_bio TEXT DEFAULT '',
			startup_name VARCHAR(100) DEFAULT '',
			project_category VARCHAR(50) DEFAULT '',
			project_stage VARCHAR(20) DEFAULT '',
			team_size INTEGER DEFAULT 0,
			website_link TEXT DEFAULT '',
			startup_description TEXT DEFAULT '',
			is_verified BOOLEAN DEFAULT FALSE,
			otp VARCHAR(6),
			otp_expiry DATETIME,
			reset_otp VARCHAR(6),
			reset_otp_expiry DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (email, role)
		);`,
		`CREATE TABLE IF NOT EXISTS campaigns (
			id INTEGER PRIMARY KEY,
			owner_id INTEGER NOT NULL,
			project_name VARCHAR(100) NOT NULL,
			startup_name VARCHAR(100) NOT NULL,
			owner_name VARCHAR(100) NOT NULL,
			category VARCHAR(50) NOT NULL,
			tagline VARCHAR(100) NOT NULL,
			description TEXT NOT NULL,
			funding_goal REAL NOT NULL,
			current_funding REAL NOT NULL DEFAULT 0,
			project_stage VARCHAR(20) NOT NULL,
			team_size INTEGER NOT NULL DEFAULT 0,
			website_link TEXT DEFAULT '',
			image_data TEXT DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			deadline DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (owner_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id INTEGER PRIMARY KEY,
			investor_id INTEGER NOT NULL,
			owner_id INTEGER NOT NULL,
			campaign_id INTEGER NOT NULL,
			last_message TEXT NOT NULL DEFAULT '',
			last_message_time DATETIME NOT NULL,
			unread_count_investor INTEGER NOT NULL DEFAULT 0,
			unread_count_owner INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (investor_id, owner_id, campaign_id),
			FOREIGN KEY (investor_id) REFERENCES users(id),
			FOREIGN KEY (owner_id) REFERENCES users(id),
			FOREIGN KEY (campaign_id) REFERENCES campaigns(id)
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY,
			conversation_id INTEGER NOT NULL,
			sender_id INTEGER NOT NULL,
			sender_role VARCHAR(20) NOT NULL,
			body TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (conversation_id) REFERENCES conversations(id),
			FOREIGN KEY (sender_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS saved_campaigns (
			investor_id INTEGER NOT NULL,
			campaign_id INTEGER NOT NULL,
			saved_at DATETIME NOT NULL,
			PRIMARY KEY (investor_id, campaign_id),
			FOREIGN KEY (investor_id) REFERENCES users(id),
			FOREIGN KEY (campaign_id) REFERENCES campaigns(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_users_email_role ON users(email, role);`,
		`CREATE INDEX IF NOT EXISTS idx_campaigns_owner ON campaigns(owner_id);`,
		`CREATE INDEX IF NOT EXISTS idx_campaigns_status ON campaigns(status);`,
		`CREATE INDEX IF NOT EXISTS idx_campaigns_created_at ON campaigns(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_investor ON conversations(investor_id);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_owner ON conversations(owner_id);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_last_msg ON conversations(last_message_time DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conv_created ON messages(conversation_id, created_at DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
