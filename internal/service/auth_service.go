package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ehdrbdndns/Hagah-Backend/internal/events"
	"github.com/ehdrbdndns/Hagah-Backend/internal/identity"
	"github.com/ehdrbdndns/Hagah-Backend/internal/jwt"
	"github.com/ehdrbdndns/Hagah-Backend/internal/model"
	"github.com/ehdrbdndns/Hagah-Backend/internal/repository"
)

type SignupInput struct {
	Provider    string
	AccessToken string
	IDToken     string
	Email       string
	Name        string
}

type LoginInput struct {
	Provider    string
	AccessToken string
	IDToken     string
	GuestUserID string
}

type AuthResult struct {
	User  *model.User
	Token string
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	GetUserProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type authService struct {
	resolvers *identity.Registry
	userRepo  repository.UserRepository
	issuer    *jwt.Issuer
	publisher events.EventPublisher
}

func NewAuthService(resolvers *identity.Registry, userRepo repository.UserRepository, issuer *jwt.Issuer, publisher events.EventPublisher) AuthService {
	return &authService{
		resolvers: resolvers,
		userRepo:  userRepo,
		issuer:    issuer,
		publisher: publisher,
	}
}

// Signup resolves the credential, creates exactly one new account and
// issues a session token. An existing (provider, provider_id) pair
// surfaces as repository.ErrDuplicateIdentity; the database constraint
// decides, so a race between two identical signups cannot create two
// accounts.
func (s *authService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	resolver, err := s.resolvers.Get(input.Provider)
	if err != nil {
		return nil, err
	}

	resolved, err := resolver.ResolveSignup(ctx, identity.Credential{
		AccessToken: input.AccessToken,
		IDToken:     input.IDToken,
		Email:       input.Email,
		Name:        input.Name,
	})
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Provider:        resolved.Provider,
		ProviderID:      &resolved.ExternalID,
		Email:           resolved.Email,
		Name:            resolved.Name,
		ProfileImageURL: resolved.ProfileImageURL,
	}

	newID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	user.ID = newID

	token, err := s.issuer.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	go s.publisher.PublishUserSignedUp(user)

	return &AuthResult{User: user, Token: token}, nil
}

// Login resolves the credential and looks the account up. A miss is
// repository.ErrUserNotFound; no account is ever created here, and no
// stored profile field is refreshed.
func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	resolver, err := s.resolvers.Get(input.Provider)
	if err != nil {
		return nil, err
	}

	resolved, err := resolver.ResolveLogin(ctx, identity.Credential{
		AccessToken: input.AccessToken,
		IDToken:     input.IDToken,
		GuestUserID: input.GuestUserID,
	})
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByProviderID(ctx, resolved.Provider, resolved.ExternalID)
	if err != nil {
		return nil, err
	}

	token, err := s.issuer.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (s *authService) GetUserProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}
