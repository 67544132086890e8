package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fundhub/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Append(ctx context.Context, m *domain.Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO messages (conversation_id, sender_id, sender_role, body, is_read, created_at)
		VALUES (?, ?, ?, ?, FALSE, ?)
	`, m.ConversationID, m.SenderID, m.SenderRole, m.Body, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	// The counter bump stays inside SQL so a racing mark-as-read cannot
	// erase it.
	counter := "unread_count_owner"
	if m.SenderRole == domain.RoleOwner {
		counter = "unread_count_investor"
	}
	upd, err := tx.ExecContext(ctx, `
		UPDATE conversations
		SET last_message = ?, last_message_time = ?, `+counter+` = `+counter+` + 1
		WHERE id = ?
	`, m.Body, m.CreatedAt, m.ConversationID)
	if err != nil {
		return fmt.Errorf("update conversation summary: %w", err)
	}
	n, err := upd.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	m.ID = id
	m.IsRead = false
	return nil
}

func (r *MessageRepo) ListForConversation(ctx context.Context, conversationID int64, limit int) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, sender_role, body, is_read, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var res []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(
			&m.ID, &m.ConversationID, &m.SenderID, &m.SenderRole, &m.Body, &m.IsRead, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
