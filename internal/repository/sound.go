package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/evansachie/lifeguard/internal/model"
)

// ErrFavoriteNotFound is returned when the sound is not in the user's favorites.
var ErrFavoriteNotFound = errors.New("favorite not found")

// UpsertFavoriteSound adds a sound to the user's favorites, refreshing its
// metadata when it is already there.
func (r *Repository) UpsertFavoriteSound(ctx context.Context, s *model.FavoriteSound) error {
	query := `
		INSERT INTO favorite_sounds (id, user_id, sound_id, sound_name, sound_url, preview_url, category, duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, sound_id) DO UPDATE
		SET sound_name = EXCLUDED.sound_name,
		    sound_url = EXCLUDED.sound_url,
		    preview_url = EXCLUDED.preview_url,
		    category = EXCLUDED.category,
		    duration = EXCLUDED.duration
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		s.ID,
		s.UserID,
		s.SoundID,
		s.SoundName,
		s.SoundURL,
		s.PreviewURL,
		s.Category,
		s.Duration,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save favorite sound: %w", err)
	}
	return nil
}

// ListFavoriteSounds returns the user's favorites, newest first.
func (r *Repository) ListFavoriteSounds(ctx context.Context, userID string) ([]*model.FavoriteSound, error) {
	query := `
		SELECT id, user_id, sound_id, sound_name, sound_url, preview_url, category, duration, created_at
		FROM favorite_sounds
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite sounds: %w", err)
	}
	defer rows.Close()

	out := make([]*model.FavoriteSound, 0)
	for rows.Next() {
		var s model.FavoriteSound
		if err := rows.Scan(&s.ID, &s.UserID, &s.SoundID, &s.SoundName, &s.SoundURL, &s.PreviewURL, &s.Category, &s.Duration, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite sound: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// DeleteFavoriteSound removes a sound from the user's favorites.
func (r *Repository) DeleteFavoriteSound(ctx context.Context, userID, soundID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM favorite_sounds WHERE user_id = $1 AND sound_id = $2`, userID, soundID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite sound: %w", err)
	}
	return rowAffected(tag, ErrFavoriteNotFound)
}
