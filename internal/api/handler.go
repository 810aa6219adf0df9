package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ehdrbdndns/Hagah-Backend/internal/identity"
	"github.com/ehdrbdndns/Hagah-Backend/internal/repository"
	"github.com/ehdrbdndns/Hagah-Backend/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
	validate    *validator.Validate
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// Response is the JSON envelope every endpoint returns.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondSuccess(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Response{Success: true, Data: data})
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{Success: false, Message: message})
}

type AuthData struct {
	UserID          uuid.UUID `json:"user_id"`
	Provider        string    `json:"provider"`
	Email           *string   `json:"email"`
	Name            *string   `json:"name"`
	ProfileImageURL *string   `json:"profile_image_url"`
	Token           string    `json:"token"`
}

func newAuthData(result *service.AuthResult) AuthData {
	return AuthData{
		UserID:          result.User.ID,
		Provider:        result.User.Provider,
		Email:           result.User.Email,
		Name:            result.User.Name,
		ProfileImageURL: result.User.ProfileImageURL,
		Token:           result.Token,
	}
}

type SignupRequest struct {
	Provider    string `json:"provider" validate:"required,oneof=kakao apple guest"`
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	Email       string `json:"email" validate:"omitempty,email"`
	Name        string `json:"name"`
}

type LoginRequest struct {
	Provider    string `json:"provider" validate:"required,oneof=kakao apple guest"`
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	GuestUserID string `json:"guest_user_id"`
}

// missingCredentialField reports which request field the provider
// requires but the request left empty. Guest signup needs nothing;
// guest login needs the previously issued guest_user_id.
func missingCredentialField(provider, accessToken, idToken, guestUserID string, login bool) string {
	switch provider {
	case identity.ProviderKakao:
		if accessToken == "" {
			return "access_token"
		}
	case identity.ProviderApple:
		if idToken == "" {
			return "id_token"
		}
	case identity.ProviderGuest:
		if login && guestUserID == "" {
			return "guest_user_id"
		}
	}
	return ""
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var request SignupRequest

	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}

	if field := missingCredentialField(request.Provider, request.AccessToken, request.IDToken, "", false); field != "" {
		return respondError(c, fiber.StatusBadRequest, "Missing required field: "+field)
	}

	result, err := h.authService.Signup(c.Context(), service.SignupInput{
		Provider:    request.Provider,
		AccessToken: request.AccessToken,
		IDToken:     request.IDToken,
		Email:       request.Email,
		Name:        request.Name,
	})

	if err != nil {
		return respondAuthError(c, err)
	}

	return respondSuccess(c, fiber.StatusCreated, newAuthData(result))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request LoginRequest

	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}

	if field := missingCredentialField(request.Provider, request.AccessToken, request.IDToken, request.GuestUserID, true); field != "" {
		return respondError(c, fiber.StatusBadRequest, "Missing required field: "+field)
	}

	result, err := h.authService.Login(c.Context(), service.LoginInput{
		Provider:    request.Provider,
		AccessToken: request.AccessToken,
		IDToken:     request.IDToken,
		GuestUserID: request.GuestUserID,
	})

	if err != nil {
		return respondAuthError(c, err)
	}

	return respondSuccess(c, fiber.StatusOK, newAuthData(result))
}

// respondAuthError maps resolver and repository failures onto the
// response taxonomy. Anything unclassified collapses to a generic 500
// with no internal detail.
func respondAuthError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, identity.ErrMissingCredential):
		return respondError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, identity.ErrInvalidCredential),
		errors.Is(err, identity.ErrExpiredCredential),
		errors.Is(err, identity.ErrProviderRejected),
		errors.Is(err, identity.ErrProviderUnreachable):
		return respondError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, repository.ErrDuplicateIdentity):
		return respondError(c, fiber.StatusConflict, "Account already exists, log in instead")
	case errors.Is(err, repository.ErrUserNotFound):
		return respondError(c, fiber.StatusNotFound, "Account not found, sign up first")
	default:
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}
}

type UserProfileData struct {
	UserID          uuid.UUID `json:"user_id"`
	Provider        string    `json:"provider"`
	Email           *string   `json:"email"`
	Name            *string   `json:"name"`
	ProfileImageURL *string   `json:"profile_image_url"`
}

func (h *AuthHandler) GetUserProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, err.Error())
	}

	user, err := h.authService.GetUserProfile(c.Context(), userID)

	if err != nil {
		return respondError(c, fiber.StatusNotFound, "User not found")
	}

	return respondSuccess(c, fiber.StatusOK, UserProfileData{
		UserID:          user.ID,
		Provider:        user.Provider,
		Email:           user.Email,
		Name:            user.Name,
		ProfileImageURL: user.ProfileImageURL,
	})
}
