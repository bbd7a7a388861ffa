package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gamerlog/errs"
)

// tokenTTL is how long an issued identity token stays valid.
const tokenTTL = 24 * time.Hour

// MakeToken signs a token carrying the user's id, valid for a day.
func MakeToken(userID int, secret string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies a token string and extracts the user id it carries.
func ParseToken(tokenStr, secret string) (int, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.Errorf(errs.EUNAUTHORIZED, "Unexpected signing method.")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errs.Errorf(errs.EUNAUTHORIZED, "Invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errs.Errorf(errs.EUNAUTHORIZED, "Invalid token payload")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errs.Errorf(errs.EUNAUTHORIZED, "Invalid token payload")
	}
	return int(userID), nil
}
