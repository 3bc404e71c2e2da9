package auth

import (
	"errors"
	"fmt"

	"streamwave/models"
)

// The guard chain resolves a bearer token into a capability-checked
// principal in strict order: authenticated, then active, then role. Each
// guard is independently callable so a route can require exactly the check
// strength it needs, and every guard is a pure function of the token and the
// current store state.

// ArtistOrAdmin is the capability set for content upload.
var ArtistOrAdmin = []string{models.TypeArtist, models.TypeAdmin}

// AdminOnly is the capability set for user and content management.
var AdminOnly = []string{models.TypeAdmin}

// CurrentUser verifies the token and resolves its subject to a principal.
// A valid token whose subject no longer maps to a record (for example a
// deleted account) fails the same way as a bad token.
func (s *Service) CurrentUser(token string) (models.Principal, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	user, err := s.GetUser(username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// ActiveUser runs CurrentUser and additionally requires the account to be
// enabled.
func (s *Service) ActiveUser(token string) (models.Principal, error) {
	user, err := s.CurrentUser(token)
	if err != nil {
		return nil, err
	}
	if user.Account().Disabled {
		return nil, ErrInactiveAccount
	}
	return user, nil
}

// RequireRole runs ActiveUser and additionally requires the principal's
// variant to be one of the given capability types. The disabled check always
// runs before the role check, so a disabled admin fails as inactive, not as
// forbidden.
func (s *Service) RequireRole(token string, types ...string) (models.Principal, error) {
	user, err := s.ActiveUser(token)
	if err != nil {
		return nil, err
	}
	for _, t := range types {
		if user.UserType() == t {
			return user, nil
		}
	}
	return nil, ErrForbidden
}
