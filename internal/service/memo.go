package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/repository"
)

// MemoService handles memo business logic.
type MemoService struct {
	store  MemoStore
	logger *slog.Logger
}

// NewMemoService creates a new MemoService.
func NewMemoService(store MemoStore, logger *slog.Logger) *MemoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoService{store: store, logger: logger}
}

// List returns the user's memos, newest first.
func (s *MemoService) List(ctx context.Context, userID string) ([]*model.Memo, error) {
	return s.store.ListMemos(ctx, userID)
}

// CountUndone counts memos not yet marked done.
func (s *MemoService) CountUndone(ctx context.Context, userID string) (int, error) {
	return s.store.CountUndoneMemos(ctx, userID)
}

// Create stores a new memo. Blank text is rejected.
func (s *MemoService) Create(ctx context.Context, userID, text string) (*model.Memo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidInput
	}

	memo := &model.Memo{
		ID:     repository.NewID(),
		UserID: userID,
		Memo:   text,
	}
	if err := s.store.CreateMemo(ctx, memo); err != nil {
		return nil, fmt.Errorf("failed to create memo: %w", err)
	}

	s.logger.Debug("memo_created", "user_id", userID, "memo_id", memo.ID)
	return memo, nil
}

// UpdateText replaces the text of a memo.
func (s *MemoService) UpdateText(ctx context.Context, userID, id, text string) (*model.Memo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidInput
	}
	memo, err := s.store.UpdateMemoText(ctx, userID, id, text)
	return memo, mapMemoErr(err)
}

// SetDone flips the done flag of a memo.
func (s *MemoService) SetDone(ctx context.Context, userID, id string, done bool) (*model.Memo, error) {
	memo, err := s.store.SetMemoDone(ctx, userID, id, done)
	return memo, mapMemoErr(err)
}

// Delete removes a memo.
func (s *MemoService) Delete(ctx context.Context, userID, id string) error {
	if err := mapMemoErr(s.store.DeleteMemo(ctx, userID, id)); err != nil {
		return err
	}
	s.logger.Debug("memo_deleted", "user_id", userID, "memo_id", id)
	return nil
}

func mapMemoErr(err error) error {
	if errors.Is(err, repository.ErrMemoNotFound) {
		return ErrMemoNotFound
	}
	return err
}
