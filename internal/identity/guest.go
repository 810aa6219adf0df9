package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const defaultGuestName = "Guest"

// GuestResolver handles the anonymous provider. There is no external
// authority: signup mints a fresh identifier, and on login whoever
// presents that identifier is treated as its owner. The repository
// lookup is the only check.
type GuestResolver struct{}

func NewGuestResolver() *GuestResolver {
	return &GuestResolver{}
}

func (r *GuestResolver) Provider() string {
	return ProviderGuest
}

func (r *GuestResolver) ResolveSignup(ctx context.Context, cred Credential) (*Identity, error) {
	name := cred.Name
	if name == "" {
		name = defaultGuestName
	}

	identity := &Identity{
		Provider:   ProviderGuest,
		ExternalID: uuid.NewString(),
		Name:       &name,
	}

	if cred.Email != "" {
		identity.Email = &cred.Email
	}

	return identity, nil
}

func (r *GuestResolver) ResolveLogin(ctx context.Context, cred Credential) (*Identity, error) {
	if cred.GuestUserID == "" {
		return nil, fmt.Errorf("%w: guest_user_id", ErrMissingCredential)
	}

	return &Identity{
		Provider:   ProviderGuest,
		ExternalID: cred.GuestUserID,
	}, nil
}
