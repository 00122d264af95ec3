package utils

import (
	"errors"

	"consultly/config"

	"github.com/golang-jwt/jwt"
)

// Tokens are issued by the external auth service; this engine only
// verifies the signature and extracts the caller identity.

func secretKey() []byte {
	return []byte(config.AppConfig.JWTSecret)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ExtractCallerFromToken returns the subject (student or consultant id)
// and role claim from a valid token string.
func ExtractCallerFromToken(tokenString string) (id, role string, err error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", "", errors.New("token does not contain a valid 'sub' claim")
	}

	// Role is optional; callers without one are treated as students.
	roleClaim, _ := claims["role"].(string)

	return sub, roleClaim, nil
}
