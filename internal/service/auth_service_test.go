package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ehdrbdndns/Hagah-Backend/internal/identity"
	"github.com/ehdrbdndns/Hagah-Backend/internal/jwt"
	"github.com/ehdrbdndns/Hagah-Backend/internal/model"
	"github.com/ehdrbdndns/Hagah-Backend/internal/repository"
	"github.com/ehdrbdndns/Hagah-Backend/internal/service"
)

type fakeUserRepo struct {
	mu          sync.Mutex
	users       map[string]*model.User
	createCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func key(provider, providerID string) string { return provider + "/" + providerID }

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++

	k := key(user.Provider, *user.ProviderID)
	if _, exists := f.users[k]; exists {
		return uuid.Nil, repository.ErrDuplicateIdentity
	}

	stored := *user
	stored.ID = uuid.New()
	f.users[k] = &stored
	return stored.ID, nil
}

func (f *fakeUserRepo) FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[key(provider, providerID)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type fakePublisher struct {
	mu     sync.Mutex
	events []uuid.UUID
}

func (f *fakePublisher) PublishUserSignedUp(user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, user.ID)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type stubResolver struct {
	provider string
	identity *identity.Identity
	err      error
}

func (s *stubResolver) Provider() string { return s.provider }

func (s *stubResolver) ResolveSignup(ctx context.Context, cred identity.Credential) (*identity.Identity, error) {
	return s.identity, s.err
}

func (s *stubResolver) ResolveLogin(ctx context.Context, cred identity.Credential) (*identity.Identity, error) {
	return s.identity, s.err
}

func newService(t *testing.T, repo repository.UserRepository, pub *fakePublisher, resolvers ...identity.Resolver) (service.AuthService, *jwt.Issuer) {
	t.Helper()
	issuer := jwt.NewIssuer("test-secret")
	return service.NewAuthService(identity.NewRegistry(resolvers...), repo, issuer, pub), issuer
}

func TestSignup_GuestAlwaysCreatesFreshAccount(t *testing.T) {
	repo := newFakeUserRepo()
	pub := &fakePublisher{}
	svc, _ := newService(t, repo, pub, identity.NewGuestResolver())

	first, err := svc.Signup(context.Background(), service.SignupInput{Provider: "guest", Name: "Ann"})
	require.NoError(t, err)
	second, err := svc.Signup(context.Background(), service.SignupInput{Provider: "guest", Name: "Ann"})
	require.NoError(t, err)

	require.NotEqual(t, first.User.ID, second.User.ID)
	require.Equal(t, "Ann", *first.User.Name)
	require.Equal(t, "guest", first.User.Provider)
	require.Equal(t, 2, repo.createCalls)

	require.Eventually(t, func() bool { return pub.count() == 2 }, time.Second, 10*time.Millisecond)
}

func TestSignupThenLogin_ReturnsSameUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newService(t, repo, &fakePublisher{}, identity.NewGuestResolver())

	signedUp, err := svc.Signup(context.Background(), service.SignupInput{Provider: "guest"})
	require.NoError(t, err)

	loggedIn, err := svc.Login(context.Background(), service.LoginInput{
		Provider:    "guest",
		GuestUserID: *signedUp.User.ProviderID,
	})
	require.NoError(t, err)
	require.Equal(t, signedUp.User.ID, loggedIn.User.ID)
}

func TestSignup_DuplicateIdentityConflicts(t *testing.T) {
	repo := newFakeUserRepo()
	resolver := &stubResolver{
		provider: "apple",
		identity: &identity.Identity{Provider: "apple", ExternalID: "001234.abcdef"},
	}
	svc, _ := newService(t, repo, &fakePublisher{}, resolver)

	_, err := svc.Signup(context.Background(), service.SignupInput{Provider: "apple", IDToken: "x"})
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), service.SignupInput{Provider: "apple", IDToken: "x"})
	require.ErrorIs(t, err, repository.ErrDuplicateIdentity)
	require.Len(t, repo.users, 1)
}

func TestLogin_UnknownAccountIsNotCreated(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newService(t, repo, &fakePublisher{}, identity.NewGuestResolver())

	_, err := svc.Login(context.Background(), service.LoginInput{Provider: "guest", GuestUserID: "never-seen"})
	require.ErrorIs(t, err, repository.ErrUserNotFound)
	require.Equal(t, 0, repo.createCalls)
}

func TestSignup_ResolverFailurePropagates(t *testing.T) {
	repo := newFakeUserRepo()
	resolver := &stubResolver{provider: "kakao", err: identity.ErrInvalidCredential}
	svc, _ := newService(t, repo, &fakePublisher{}, resolver)

	_, err := svc.Signup(context.Background(), service.SignupInput{Provider: "kakao", AccessToken: "bad"})
	require.ErrorIs(t, err, identity.ErrInvalidCredential)
	require.Equal(t, 0, repo.createCalls)
}

func TestLogin_DoesNotRefreshProfile(t *testing.T) {
	repo := newFakeUserRepo()
	oldName := "Old Name"
	providerID := "12345"
	storedID, err := repo.Create(context.Background(), &model.User{
		Provider:   "kakao",
		ProviderID: &providerID,
		Name:       &oldName,
	})
	require.NoError(t, err)

	newName := "New Name"
	resolver := &stubResolver{
		provider: "kakao",
		identity: &identity.Identity{Provider: "kakao", ExternalID: providerID, Name: &newName},
	}
	svc, _ := newService(t, repo, &fakePublisher{}, resolver)

	result, err := svc.Login(context.Background(), service.LoginInput{Provider: "kakao", AccessToken: "x"})
	require.NoError(t, err)
	require.Equal(t, storedID, result.User.ID)
	require.Equal(t, oldName, *result.User.Name)
}

func TestSignup_TokenCarriesUserID(t *testing.T) {
	repo := newFakeUserRepo()
	svc, issuer := newService(t, repo, &fakePublisher{}, identity.NewGuestResolver())

	result, err := svc.Signup(context.Background(), service.SignupInput{Provider: "guest"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	claims, err := issuer.ValidateToken(result.Token)
	require.NoError(t, err)
	require.Equal(t, result.User.ID.String(), claims["sub"])
}

func TestSignup_UnknownProviderRejected(t *testing.T) {
	svc, _ := newService(t, newFakeUserRepo(), &fakePublisher{}, identity.NewGuestResolver())

	_, err := svc.Signup(context.Background(), service.SignupInput{Provider: "naver"})
	require.Error(t, err)
}
