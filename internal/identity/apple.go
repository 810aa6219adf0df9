package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const appleIssuer = "https://appleid.apple.com"

// TokenVerifier checks the signature of an Apple identity token before
// its claims are trusted. The default is NoopVerifier: the token is
// decoded structurally and its signature is never checked. A real
// implementation would fetch Apple's JWKS and verify against it.
type TokenVerifier interface {
	Verify(rawToken string) error
}

// NoopVerifier accepts every token without inspecting the signature.
type NoopVerifier struct{}

func (NoopVerifier) Verify(string) error { return nil }

// AppleResolver resolves an Apple identity token (a three-part JWT) to
// its subject claim. Claims are read without signature verification
// unless a verifier other than NoopVerifier is supplied.
type AppleResolver struct {
	verifier TokenVerifier
	now      func() time.Time
}

func NewAppleResolver(verifier TokenVerifier) *AppleResolver {
	if verifier == nil {
		verifier = NoopVerifier{}
	}
	return &AppleResolver{verifier: verifier, now: time.Now}
}

func (r *AppleResolver) Provider() string {
	return ProviderApple
}

func (r *AppleResolver) ResolveSignup(ctx context.Context, cred Credential) (*Identity, error) {
	return r.resolve(cred)
}

func (r *AppleResolver) ResolveLogin(ctx context.Context, cred Credential) (*Identity, error) {
	return r.resolve(cred)
}

func (r *AppleResolver) resolve(cred Credential) (*Identity, error) {
	if cred.IDToken == "" {
		return nil, fmt.Errorf("%w: id_token", ErrMissingCredential)
	}

	if err := r.verifier.Verify(cred.IDToken); err != nil {
		return nil, fmt.Errorf("%w: signature verification failed", ErrInvalidCredential)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(cred.IDToken, claims); err != nil {
		return nil, fmt.Errorf("%w: malformed identity token", ErrInvalidCredential)
	}

	// Expiry is checked before the issuer: an expired token reports as
	// expired no matter what else is wrong with it.
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: identity token has no expiry", ErrInvalidCredential)
	}
	if !exp.After(r.now()) {
		return nil, fmt.Errorf("%w: identity token expired at %s", ErrExpiredCredential, exp.Format(time.RFC3339))
	}

	iss, err := claims.GetIssuer()
	if err != nil || iss != appleIssuer {
		return nil, fmt.Errorf("%w: unexpected issuer", ErrInvalidCredential)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: identity token has no subject", ErrInvalidCredential)
	}

	identity := &Identity{
		Provider:   ProviderApple,
		ExternalID: sub,
	}

	if email, ok := claims["email"].(string); ok && email != "" {
		identity.Email = &email
	}

	return identity, nil
}
