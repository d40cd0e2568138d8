package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/evansachie/lifeguard/internal/model"
)

// ErrMemoNotFound is returned when a memo does not exist for the user.
var ErrMemoNotFound = errors.New("memo not found")

const memoColumns = `id, user_id, memo, done, created_at, updated_at`

// ListMemos returns the user's memos, newest first.
func (r *Repository) ListMemos(ctx context.Context, userID string) ([]*model.Memo, error) {
	query := `SELECT ` + memoColumns + ` FROM memos WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memos: %w", err)
	}
	defer rows.Close()

	memos := make([]*model.Memo, 0)
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan memo: %w", err)
		}
		memos = append(memos, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memos: %w", err)
	}

	return memos, nil
}

// CountUndoneMemos counts memos not yet marked done.
func (r *Repository) CountUndoneMemos(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM memos WHERE user_id = $1 AND done = FALSE`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count undone memos: %w", err)
	}
	return count, nil
}

// CreateMemo inserts a memo and fills its timestamps.
func (r *Repository) CreateMemo(ctx context.Context, memo *model.Memo) error {
	query := `
		INSERT INTO memos (id, user_id, memo, done)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, memo.ID, memo.UserID, memo.Memo, memo.Done).
		Scan(&memo.CreatedAt, &memo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create memo: %w", err)
	}
	return nil
}

// UpdateMemoText replaces the memo text.
func (r *Repository) UpdateMemoText(ctx context.Context, userID, id, text string) (*model.Memo, error) {
	query := `
		UPDATE memos SET memo = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + memoColumns

	return r.updateMemo(ctx, query, id, userID, text)
}

// SetMemoDone sets the done flag.
func (r *Repository) SetMemoDone(ctx context.Context, userID, id string, done bool) (*model.Memo, error) {
	query := `
		UPDATE memos SET done = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + memoColumns

	return r.updateMemo(ctx, query, id, userID, done)
}

func (r *Repository) updateMemo(ctx context.Context, query string, args ...any) (*model.Memo, error) {
	m, err := scanMemo(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemoNotFound
		}
		return nil, fmt.Errorf("failed to update memo: %w", err)
	}
	return m, nil
}

// DeleteMemo removes a memo.
func (r *Repository) DeleteMemo(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM memos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete memo: %w", err)
	}
	return rowAffected(tag, ErrMemoNotFound)
}

func scanMemo(row pgx.Row) (*model.Memo, error) {
	var m model.Memo
	err := row.Scan(&m.ID, &m.UserID, &m.Memo, &m.Done, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}
