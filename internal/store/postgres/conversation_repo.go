package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fundhub/internal/domain"
)

type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

var _ domain.ConversationRepository = (*ConversationRepo)(nil)

const conversationColumns = `id, investor_id, owner_id, campaign_id, last_message,
	last_message_time, unread_count_investor, unread_count_owner, created_at`

func (r *ConversationRepo) GetOrCreate(ctx context.Context, investorID, ownerID, campaignID int64) (*domain.Conversation, error) {
	// Race-safe upsert on the triple's unique index; the loser of a
	// concurrent insert reads the winner's row.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversations (investor_id, owner_id, campaign_id, last_message, last_message_time)
		VALUES ($1, $2, $3, '', $4)
		ON CONFLICT (investor_id, owner_id, campaign_id) DO NOTHING
	`, investorID, ownerID, campaignID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("upsert conversation: %w", err)
	}

	c := &domain.Conversation{}
	err = r.db.QueryRowContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE investor_id = $1 AND owner_id = $2 AND campaign_id = $3
	`, investorID, ownerID, campaignID).Scan(
		&c.ID, &c.InvestorID, &c.OwnerID, &c.CampaignID, &c.LastMessage,
		&c.LastMessageTime, &c.UnreadInvestor, &c.UnreadOwner, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get conversation by triple: %w", err)
	}
	return c, nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	c := &domain.Conversation{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+conversationColumns+` FROM conversations WHERE id = $1
	`, id).Scan(
		&c.ID, &c.InvestorID, &c.OwnerID, &c.CampaignID, &c.LastMessage,
		&c.LastMessageTime, &c.UnreadInvestor, &c.UnreadOwner, &c.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

func (r *ConversationRepo) ListForUser(ctx context.Context, userID int64, role domain.Role) ([]*domain.Conversation, error) {
	column := "owner_id"
	if role == domain.RoleInvestor {
		column = "investor_id"
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE `+column+` = $1
		ORDER BY last_message_time DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var res []*domain.Conversation
	for rows.Next() {
		c := &domain.Conversation{}
		if err := rows.Scan(
			&c.ID, &c.InvestorID, &c.OwnerID, &c.CampaignID, &c.LastMessage,
			&c.LastMessageTime, &c.UnreadInvestor, &c.UnreadOwner, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *ConversationRepo) MarkRead(ctx context.Context, conversationID int64, reader domain.Role) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE conversation_id = $1 AND sender_role = $2 AND is_read = FALSE
	`, conversationID, reader.Other()); err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}

	counter := "unread_count_owner"
	if reader == domain.RoleInvestor {
		counter = "unread_count_investor"
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE conversations SET `+counter+` = 0 WHERE id = $1
	`, conversationID)
	if err != nil {
		return fmt.Errorf("reset unread counter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
