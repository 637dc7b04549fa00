package main

import (
	"errors"
	"time"

	"strukscan/models"
	"strukscan/pkg/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

func issueToken(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     user.Role.Name,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	})
	return token.SignedString(jwtSecret)
}

var errBadAuthHeader = errors.New("missing or invalid Authorization header")

// parseToken validates an HS256 bearer token and returns its claims.
func parseToken(header string) (jwt.MapClaims, error) {
	if len(header) < 8 || header[:7] != "Bearer " {
		return nil, errBadAuthHeader
	}
	token, err := jwt.Parse(header[7:], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// currentUser loads the authenticated user named by the token.
func currentUser(c *gin.Context) (models.User, bool) {
	name := c.GetString("username")
	if name == "" {
		return models.User{}, false
	}
	user, err := store.UserByName(db, name)
	if err != nil {
		return models.User{}, false
	}
	return user, true
}
