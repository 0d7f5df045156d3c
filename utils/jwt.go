package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sicily/campusfound/config"
)

// Two independent credential schemes back the API: admin tokens and user
// tokens are signed with distinct secrets so one can never be replayed as
// the other.

// UserClaims identifies a mini-program end user.
type UserClaims struct {
	UserID uint   `json:"user_id"`
	OpenID string `json:"open_id"`
	jwt.RegisteredClaims
}

// AdminClaims identifies a console admin.
type AdminClaims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateUserToken issues a user JWT with the configured lifetime.
func GenerateUserToken(userID uint, openID string) (string, error) {
	cfg := config.Get()
	claims := UserClaims{
		UserID: userID,
		OpenID: openID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.UserTokenTTLDays) * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTUserSecret))
}

// GenerateAdminToken issues an admin JWT valid for seven days.
func GenerateAdminToken(adminID uint, username string) (string, error) {
	cfg := config.Get()
	claims := AdminClaims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTAdminSecret))
}

// ParseUserToken validates a user JWT against the user secret.
func ParseUserToken(tokenStr string) (*UserClaims, error) {
	claims := &UserClaims{}
	if err := parseHMAC(tokenStr, claims, config.Get().JWTUserSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseAdminToken validates an admin JWT against the admin secret.
func ParseAdminToken(tokenStr string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := parseHMAC(tokenStr, claims, config.Get().JWTAdminSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func parseHMAC(tokenStr string, claims jwt.Claims, secret string) error {
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errors.New("invalid token claims")
	}
	return nil
}
