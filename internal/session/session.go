// Package session carries the authenticated caller explicitly instead of
// reading a process-wide "current user".
package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoSession = errors.New("no authenticated session")

// Session is the authenticated caller of a single request.
type Session struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
	Role        string
}

func (s Session) IsZero() bool { return s.UserID == uuid.Nil }

// FromFiber builds the Session from the JWT placed in locals by the auth
// middleware.
func FromFiber(c *fiber.Ctx) (Session, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return Session{}, ErrNoSession
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, errors.New("invalid claims")
	}
	return FromClaims(claims)
}

func FromClaims(claims jwt.MapClaims) (Session, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Session{}, errors.New("missing sub claim")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return Session{}, err
	}

	s := Session{UserID: userID}
	s.Email, _ = claims["email"].(string)
	s.DisplayName, _ = claims["name"].(string)
	s.Role, _ = claims["role"].(string)
	return s, nil
}
