package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ehdrbdndns/Hagah-Backend/internal/model"
)

// TokenTTL is the fixed lifetime of an issued session token.
const TokenTTL = time.Hour

// Issuer signs short-lived session tokens for internal user ids.
// The signing secret is injected once at process start.
type Issuer struct {
	secret []byte
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

func (i *Issuer) GenerateToken(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"provider": user.Provider,
		"exp":      time.Now().Add(TokenTTL).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i *Issuer) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}
