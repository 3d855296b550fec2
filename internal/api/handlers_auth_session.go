package api

import (
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/terraincognita07/selene/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	minimumPasswordLength = 8
	sessionTokenLifetime  = 30 * 24 * time.Hour
)

type credentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid email"})
	}
	if len(input.Password) < minimumPasswordLength {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password too short"})
	}

	var existing int64
	if err := handler.database.Model(&models.Account{}).
		Where("lower(email) = ?", email).
		Count(&existing).Error; err != nil {
		handler.log.Errorw("check existing account", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	if existing > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already registered"})
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		handler.log.Errorw("hash password", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	account := models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(passwordHash),
		CreatedAt:    handler.now(),
	}
	if err := handler.database.Create(&account).Error; err != nil {
		handler.log.Errorw("create account", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	token, err := handler.issueToken(account)
	if err != nil {
		handler.log.Errorw("issue token", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(fiber.StatusCreated).JSON(sessionResponse{
		Token:  token,
		UserID: account.ID,
		Email:  account.Email,
	})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	account := models.Account{}
	result := handler.database.Where("lower(email) = ?", email).Limit(1).Find(&account)
	if result.Error != nil {
		handler.log.Errorw("load account", "error", result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	token, err := handler.issueToken(account)
	if err != nil {
		handler.log.Errorw("issue token", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	return c.JSON(sessionResponse{
		Token:  token,
		UserID: account.ID,
		Email:  account.Email,
	})
}

func (handler *Handler) issueToken(account models.Account) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   account.ID,
		"email": account.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(sessionTokenLifetime).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(handler.signingKey)
}
