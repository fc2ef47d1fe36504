package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer = "syncrio"

	sessionAudience = "session"
	stateAudience   = "oauth-state"
)

var ErrInvalidToken = errors.New("invalid token")

type CustomClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs a session token.
func GenerateToken(secretKey string, userID int64, email string, tokenDuration time.Duration) (string, error) {
	return generate(secretKey, userID, email, tokenDuration, sessionAudience)
}

// ValidateToken accepts session tokens only.
func ValidateToken(secretKey, tokenString string) (*CustomClaims, error) {
	return validate(secretKey, tokenString, sessionAudience)
}

// GenerateStateToken signs the OAuth state passed through a platform consent screen.
// It cannot be used as a session.
func GenerateStateToken(secretKey string, userID int64, tokenDuration time.Duration) (string, error) {
	return generate(secretKey, userID, "", tokenDuration, stateAudience)
}

func ValidateStateToken(secretKey, tokenString string) (*CustomClaims, error) {
	return validate(secretKey, tokenString, stateAudience)
}

func generate(secretKey string, userID int64, email string, tokenDuration time.Duration, audience string) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

func validate(secretKey, tokenString, audience string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(secretKey), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithAudience(audience))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
