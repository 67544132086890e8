package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"fundhub/internal/store"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
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

// isUniqueViolation reports a PostgreSQL unique-constraint error (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Migrate runs idempotent DDL migrations.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id                   BIGSERIAL PRIMARY KEY,
			role                 VARCHAR(20)  NOT NULL,
			full_name            VARCHAR(100) NOT NULL,
			email                VARCHAR(100) NOT NULL,
			hashed_password      VARCHAR(255) NOT NULL,
			phone                VARCHAR(30)  NOT NULL,
			profile_photo        TEXT         NOT NULL DEFAULT '',
			investment_budget    VARCHAR(50)  NOT NULL DEFAULT '',
			preferred_categories TEXT         NOT NULL DEFAULT '',
			investor_bio         TEXT         NOT NULL DEFAULT '',
			startup_name         VARCHAR(100) NOT NULL DEFAULT '',
			project_category     VARCHAR(50)  NOT NULL DEFAULT '',
			project_stage        VARCHAR(20)  NOT NULL DEFAULT '',
			team_size            INTEGER      NOT NULL DEFAULT 0,
			website_link         TEXT         NOT NULL DEFAULT '',
			startup_description  TEXT         NOT NULL DEFAULT '',
			is_verified          BOOLEAN      NOT NULL DEFAULT FALSE,
			otp                  VARCHAR(6),
			otp_expiry           TIMESTAMPTZ,
			reset_otp            VARCHAR(6),
			reset_otp_expiry     TIMESTAMPTZ,
			created_at           TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			UNIQUE (email, role)
		)`,
		`CREATE TABLE IF NOT EXISTS campaigns (
			id              BIGSERIAL PRIMARY KEY,
			owner_id        BIGINT       NOT NULL REFERENCES users(id),
			project_name    VARCHAR(100) NOT NULL,
			startup_name    VARCHAR(100) NOT NULL,
			owner_name      VARCHAR(100) NOT NULL,
			category        VARCHAR(50)  NOT NULL,
			tagline         VARCHAR(100) NOT NULL,
			description     TEXT         NOT NULL,
			funding_goal    DOUBLE PRECISION NOT NULL,
			current_funding DOUBLE PRECISION NOT NULL DEFAULT 0,
			project_stage   VARCHAR(20)  NOT NULL,
			team_size       INTEGER      NOT NULL DEFAULT 0,
			website_link    TEXT         NOT NULL DEFAULT '',
			image_data      TEXT         NOT NULL DEFAULT '',
			status          VARCHAR(20)  NOT NULL DEFAULT 'active',
			deadline        TIMESTAMPTZ  NOT NULL,
			created_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id                    BIGSERIAL PRIMARY KEY,
			investor_id           BIGINT      NOT NULL REFERENCES users(id),
			owner_id              BIGINT      NOT NULL REFERENCES users(id),
			campaign_id           BIGINT      NOT NULL REFERENCES campaigns(id),
			last_message          TEXT        NOT NULL DEFAULT '',
			last_message_time     TIMESTAMPTZ NOT NULL,
			unread_count_investor INTEGER     NOT NULL DEFAULT 0,
			unread_count_owner    INTEGER     NOT NULL DEFAULT 0,
			created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (investor_id, owner_id, campaign_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id              BIGSERIAL PRIMARY KEY,
			conversation_id BIGINT      NOT NULL REFERENCES conversations(id),
			sender_id       BIGINT      NOT NULL REFERENCES users(id),
			sender_role     VARCHAR(20) NOT NULL,
			body            TEXT        NOT NULL,
			is_read         BOOLEAN     NOT NULL DEFAULT FALSE,
			created_at      TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS saved_campaigns (
			investor_id BIGINT      NOT NULL REFERENCES users(id),
			campaign_id BIGINT      NOT NULL REFERENCES campaigns(id),
			saved_at    TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (investor_id, campaign_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email_role ON users(email, role)`,
		`CREATE INDEX IF NOT EXISTS idx_campaigns_owner ON campaigns(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_campaigns_status ON campaigns(status)`,
		`CREATE INDEX IF NOT EXISTS idx_campaigns_created_at ON campaigns(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_investor ON conversations(investor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_owner ON conversations(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_last_msg ON conversations(last_message_time DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conv_created ON messages(conversation_id, created_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
