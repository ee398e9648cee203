package jwt

import (
	"errors"
	"fmt"
	"time"

	"socialnet/backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const (
	PurposeSession  = "session"
	PurposeActivate = "activate"
	PurposeReset    = "reset"
	PurposeEmail    = "email"
)

// ErrInvalidToken is returned for tokens that are malformed, expired, signed
// with another key or issued for another purpose.
var ErrInvalidToken = errors.New("invalid token")

// Claims is what a parsed token carries besides its purpose. Email is only
// set on email change tokens and Stamp only on password reset tokens.
type Claims struct {
	UserID uint
	Email  string
	Stamp  string
}

// GenerateToken creates a new session JWT for a given user ID.
func GenerateToken(userID uint) (string, error) {
	return generate(userID, PurposeSession, time.Hour*24*7) // Token expires in 7 days
}

// GenerateActivationToken creates the token a new user needs to activate
// their account.
func GenerateActivationToken(userID uint) (string, error) {
	return generate(userID, PurposeActivate, linkTTL())
}

// GenerateResetToken creates a password reset token. stamp must change
// whenever the password does, so a used token stops working.
func GenerateResetToken(userID uint, stamp string) (string, error) {
	return generateWith(userID, PurposeReset, linkTTL(), jwt.MapClaims{"stp": stamp})
}

// GenerateEmailChangeToken creates the token confirming that userID wants
// email as their new address.
func GenerateEmailChangeToken(userID uint, email string) (string, error) {
	return generateWith(userID, PurposeEmail, linkTTL(), jwt.MapClaims{"eml": email})
}

// linkTTL is how long tokens sent out as links stay valid.
func linkTTL() time.Duration {
	if ttl := config.AppConfig.ActivationTTL; ttl > 0 {
		return ttl
	}
	return 24 * time.Hour
}

func generate(userID uint, purpose string, ttl time.Duration) (string, error) {
	return generateWith(userID, purpose, ttl, nil)
}

func generateWith(userID uint, purpose string, ttl time.Duration, extra jwt.MapClaims) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"pur": purpose,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// ParseToken validates tokenString and returns the user ID it was issued for.
func ParseToken(tokenString, purpose string) (uint, error) {
	claims, err := ParseClaims(tokenString, purpose)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// ParseClaims validates tokenString against purpose and returns its claims.
func ParseClaims(tokenString, purpose string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if p, _ := claims["pur"].(string); p != purpose {
		return nil, ErrInvalidToken
	}
	userIDFloat, ok := claims["sub"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	out := &Claims{UserID: uint(userIDFloat)}
	out.Email, _ = claims["eml"].(string)
	out.Stamp, _ = claims["stp"].(string)
	return out, nil
}
