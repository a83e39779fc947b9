// Package admin exposes role management on top of the identity provider.
package admin

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/medvault/medvault/internal/platform/identity"
)

type Service struct {
	provider identity.Provider
	logger   zerolog.Logger
}

func NewService(provider identity.Provider, logger zerolog.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

func (s *Service) ListUsers(ctx context.Context) ([]*identity.User, error) {
	return s.provider.AdminListUsers(ctx)
}

// UpdateRole validates the requested role against the closed role set before
// asking the provider to apply it. The provider's response is authoritative.
func (s *Service) UpdateRole(ctx context.Context, userID, rawRole string) (*identity.User, error) {
	role, err := identity.ParseRole(rawRole)
	if err != nil {
		return nil, err
	}

	user, err := s.provider.AdminUpdateUserRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("role", string(role)).
		Msg("user role updated")
	return user, nil
}
