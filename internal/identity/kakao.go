package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const kakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"

const kakaoTimeout = 10 * time.Second

// KakaoResolver resolves a Kakao OAuth access token by calling the
// user-info endpoint with it as a bearer credential.
type KakaoResolver struct {
	client      *http.Client
	userInfoURL string
}

// NewKakaoResolver builds a resolver against the given user-info URL.
// An empty URL selects the production Kakao endpoint.
func NewKakaoResolver(userInfoURL string) *KakaoResolver {
	if userInfoURL == "" {
		userInfoURL = kakaoUserInfoURL
	}
	return &KakaoResolver{
		client:      &http.Client{Timeout: kakaoTimeout},
		userInfoURL: userInfoURL,
	}
}

func (r *KakaoResolver) Provider() string {
	return ProviderKakao
}

func (r *KakaoResolver) ResolveSignup(ctx context.Context, cred Credential) (*Identity, error) {
	return r.resolve(ctx, cred)
}

func (r *KakaoResolver) ResolveLogin(ctx context.Context, cred Credential) (*Identity, error) {
	return r.resolve(ctx, cred)
}

// kakaoUserInfo mirrors the user-info response. Nickname and profile
// image live both under kakao_account.profile and under the legacy
// top-level properties object; the account-scoped values win.
type kakaoUserInfo struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   *string `json:"email"`
		Profile struct {
			Nickname        *string `json:"nickname"`
			ProfileImageURL *string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
	Properties struct {
		Nickname     *string `json:"nickname"`
		ProfileImage *string `json:"profile_image"`
	} `json:"properties"`
}

func (r *KakaoResolver) resolve(ctx context.Context, cred Credential) (*Identity, error) {
	if cred.AccessToken == "" {
		return nil, fmt.Errorf("%w: access_token", ErrMissingCredential)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: kakao rejected the access token", ErrInvalidCredential)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: kakao returned status %d", ErrProviderRejected, resp.StatusCode)
	}

	var info kakaoUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: malformed kakao user info", ErrProviderRejected)
	}

	if info.ID == 0 {
		return nil, fmt.Errorf("%w: kakao user info has no id", ErrProviderRejected)
	}

	identity := &Identity{
		Provider:   ProviderKakao,
		ExternalID: strconv.FormatInt(info.ID, 10),
		Email:      info.KakaoAccount.Email,
	}

	identity.Name = info.KakaoAccount.Profile.Nickname
	if identity.Name == nil {
		identity.Name = info.Properties.Nickname
	}

	identity.ProfileImageURL = info.KakaoAccount.Profile.ProfileImageURL
	if identity.ProfileImageURL == nil {
		identity.ProfileImageURL = info.Properties.ProfileImage
	}

	return identity, nil
}
