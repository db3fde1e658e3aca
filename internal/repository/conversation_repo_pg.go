package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Conversation is one logged chat turn.
type Conversation struct {
	ID          int64
	SessionID   string
	UserMessage string
	BotResponse string
	Intent      string
	CreatedAt   time.Time
}

type ConversationRepository interface {
	Log(ctx context.Context, c *Conversation) error
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

type PGConversationRepository struct {
	db *pgxpool.Pool
}

func NewConversationRepository(db *pgxpool.Pool) *PGConversationRepository {
	return &PGConversationRepository{db: db}
}

func (r *PGConversationRepository) Log(ctx context.Context, c *Conversation) error {
	err := r.db.QueryRow(ctx, `INSERT INTO conversations (session_id, user_message, bot_response, intent)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		c.SessionID, c.UserMessage, c.BotResponse, c.Intent,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (r *PGConversationRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM conversations WHERE created_at >= $1`, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count conversations: %w", err)
	}
	return n, nil
}

var _ ConversationRepository = (*PGConversationRepository)(nil)
