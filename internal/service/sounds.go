package service

import (
	"context"
	"errors"
	"strings"

	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/repository"
)

// SoundService manages favorite sounds. Routes address the owner by path,
// so every call checks it against the authenticated user.
type SoundService struct {
	store SoundStore
}

// NewSoundService creates a new SoundService.
func NewSoundService(store SoundStore) *SoundService {
	return &SoundService{store: store}
}

// Add bookmarks a sound. Re-adding a sound refreshes its metadata.
func (s *SoundService) Add(ctx context.Context, authUserID string, sound *model.FavoriteSound) error {
	if sound.UserID != authUserID {
		return ErrForbidden
	}
	if strings.TrimSpace(sound.SoundID) == "" {
		return ErrMissingFields
	}
	if sound.ID == "" {
		sound.ID = repository.NewID()
	}
	return s.store.UpsertFavoriteSound(ctx, sound)
}

// List returns the user's favorites, newest first.
func (s *SoundService) List(ctx context.Context, authUserID, userID string) ([]*model.FavoriteSound, error) {
	if userID != authUserID {
		return nil, ErrForbidden
	}
	return s.store.ListFavoriteSounds(ctx, userID)
}

// Remove deletes one favorite.
func (s *SoundService) Remove(ctx context.Context, authUserID, userID, soundID string) error {
	if userID != authUserID {
		return ErrForbidden
	}
	err := s.store.DeleteFavoriteSound(ctx, userID, soundID)
	if errors.Is(err, repository.ErrFavoriteNotFound) {
		return ErrFavoriteNotFound
	}
	return err
}
