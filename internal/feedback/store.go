package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	connectAttempts = 5
	connectDelay    = 5 * time.Second
)

// Store is the Postgres-backed feedback recorder.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres, retrying a few times because the database
// may still be starting when the bot comes up, and ensures the feedback
// table exists.
func NewStore(ctx context.Context, databaseURL string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		pool *pgxpool.Pool
		err  error
	)
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pool, err = connect(ctx, databaseURL)
		if err == nil {
			break
		}
		logger.Warn("feedback_db_connect_failed", "attempt", attempt, "error", err.Error())
		if attempt == connectAttempts {
			return nil, fmt.Errorf("connect to feedback database after %d attempts: %w", connectAttempts, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectDelay):
		}
	}

	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure feedback schema: %w", err)
	}
	logger.Info("feedback_store_ready")
	return s, nil
}

func connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS feedback (
			id              BIGSERIAL PRIMARY KEY,
			user_id         TEXT NOT NULL,
			message_content TEXT NOT NULL,
			analysis_result TEXT NOT NULL,
			was_helpful     BOOLEAN NOT NULL,
			created_at      TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback(user_id);
	`)
	return err
}

// Record inserts one closed feedback interaction.
func (s *Store) Record(ctx context.Context, senderID, originalMessage, analysisSummary string, wasHelpful bool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO feedback (user_id, message_content, analysis_result, was_helpful)
		VALUES ($1, $2, $3, $4)
	`, senderID, originalMessage, analysisSummary, wasHelpful)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
