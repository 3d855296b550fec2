package api

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const contextAccountKey = "account_id"

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	accountID, err := handler.verifyToken(strings.TrimSpace(token))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	c.Locals(contextAccountKey, accountID)
	return c.Next()
}

func (handler *Handler) verifyToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return handler.signingKey, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", fmt.Errorf("token is not valid")
	}

	accountID, err := claims.GetSubject()
	if err != nil || accountID == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return accountID, nil
}

func requestAccountID(c *fiber.Ctx) string {
	accountID, _ := c.Locals(contextAccountKey).(string)
	return accountID
}
