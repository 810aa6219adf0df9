package identity

import (
	"context"
	"errors"
	"fmt"
)

// Supported provider tags. The set is closed; the transport layer
// rejects anything else before it reaches a resolver.
const (
	ProviderKakao = "kakao"
	ProviderApple = "apple"
	ProviderGuest = "guest"
)

var (
	ErrMissingCredential   = errors.New("required credential is missing")
	ErrInvalidCredential   = errors.New("credential is invalid")
	ErrExpiredCredential   = errors.New("credential has expired")
	ErrProviderUnreachable = errors.New("identity provider is unreachable")
	ErrProviderRejected    = errors.New("identity provider rejected the request")
)

// Identity is the normalized result of resolving a provider credential.
// It contains facts only; no account decisions are made here.
type Identity struct {
	Provider        string
	ExternalID      string
	Email           *string
	Name            *string
	ProfileImageURL *string
}

// Credential carries the provider-supplied material from the request.
// Which field matters depends on the provider and the flow.
type Credential struct {
	AccessToken string
	IDToken     string
	GuestUserID string
	Email       string
	Name        string
}

// Resolver validates a credential against its provider and derives the
// stable external identifier. Signup and login are separate methods
// because guest resolution generates a fresh identifier on signup but
// requires a caller-supplied one on login.
type Resolver interface {
	Provider() string
	ResolveSignup(ctx context.Context, cred Credential) (*Identity, error)
	ResolveLogin(ctx context.Context, cred Credential) (*Identity, error)
}

// Registry holds the configured resolvers and allows lookup by
// provider tag. It performs no resolution logic itself.
type Registry struct {
	resolvers map[string]Resolver
}

func NewRegistry(list ...Resolver) *Registry {
	m := make(map[string]Resolver)
	for _, r := range list {
		m[r.Provider()] = r
	}
	return &Registry{resolvers: m}
}

func (r *Registry) Get(provider string) (Resolver, error) {
	resolver, ok := r.resolvers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown identity provider: %s", provider)
	}
	return resolver, nil
}
