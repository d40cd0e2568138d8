package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/evansachie/lifeguard/internal/auth"
	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/repository"
)

// userSyncTTL is how long a synced principal is trusted before the
// mirror row is refreshed again.
const userSyncTTL = 10 * time.Minute

// UserService mirrors token identities into the users table so that
// alerts and reminders can address the user.
type UserService struct {
	store  UserStore
	synced *gocache.Cache
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		store:  store,
		synced: gocache.New(userSyncTTL, 2*userSyncTTL),
		logger: logger,
	}
}

// Sync records the principal's email and name. Existing phone and
// medical info are kept. Repeated calls within userSyncTTL are no-ops.
func (s *UserService) Sync(ctx context.Context, p *auth.Principal) error {
	if p == nil || p.UserID == "" {
		return nil
	}
	key := p.UserID + "|" + p.Email + "|" + p.Name
	if _, ok := s.synced.Get(key); ok {
		return nil
	}

	user, err := s.store.GetUserByID(ctx, p.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return err
		}
		user = &model.User{ID: p.UserID}
	}
	if p.Email != "" {
		user.Email = p.Email
	}
	if first, last := splitName(p.Name); first != "" {
		user.FirstName, user.LastName = first, last
	}

	if err := s.store.UpsertUser(ctx, user); err != nil {
		return err
	}
	s.synced.Set(key, struct{}{}, gocache.DefaultExpiration)
	s.logger.Debug("user_synced", "user_id", p.UserID)
	return nil
}

func splitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	first, last, _ = strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}
