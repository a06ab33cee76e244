package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var secretKey = []byte(secretFromEnv())

func secretFromEnv() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return "supersecret"
}

// GenerateToken issues an HS256 token carrying the user's id and role.
func GenerateToken(userID int64, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"role":   role,
		"exp":    time.Now().Add(2 * time.Hour).Unix(),
	})
	return token.SignedString(secretKey)
}

// VerifyToken validates a token and returns the user id and role it carries.
func VerifyToken(token string) (int64, string, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey, nil
	})
	if err != nil {
		return 0, "", errors.New("could not parse token")
	}
	if !parsedToken.Valid {
		return 0, "", errors.New("invalid token")
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.New("invalid token claims")
	}
	userID, ok := claims["userId"].(float64)
	if !ok {
		return 0, "", errors.New("invalid token claims")
	}
	role, _ := claims["role"].(string)

	return int64(userID), role, nil
}
