package auth

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
)

// UserStore loads application users by auth id
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

// Authenticator turns an access token into the application user behind it
type Authenticator struct {
	verifier *Verifier
	users    UserStore
	cache    SessionCache
	logger   *slog.Logger
}

func NewAuthenticator(verifier *Verifier, users UserStore, cache SessionCache, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		users:    users,
		cache:    cache,
		logger:   logger,
	}
}

// CurrentUser resolves the token's user.
// It returns domain.ErrUnauthorized for bad tokens, unknown users and deactivated users,
// and domain.ErrUnavailable when the user lookup itself fails.
func (a *Authenticator) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	claims, err := a.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	userID := claims.Subject

	if u, ok := a.cache.Get(ctx, userID); ok {
		return u, nil
	}

	u, err := a.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errors.Wrap(domain.ErrUnauthorized, "user not provisioned")
		}
		a.logger.Error("User lookup failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return nil, errors.Wrap(domain.ErrUnavailable, err.Error())
	}
	if !u.IsActive {
		return nil, errors.Wrap(domain.ErrUnauthorized, "user is deactivated")
	}

	a.cache.Set(ctx, u)
	return u, nil
}

// Logout drops the cached lookup so the next request re-reads the user row
func (a *Authenticator) Logout(ctx context.Context, userID string) {
	a.Refresh(ctx, userID)
}

// Refresh drops the cached lookup after the user row changed
func (a *Authenticator) Refresh(ctx context.Context, userID string) {
	a.cache.Invalidate(ctx, userID)
}
