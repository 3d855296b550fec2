package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	database   *gorm.DB
	signingKey []byte
	log        *zap.SugaredLogger
	now        func() int64
}

func NewHandler(database *gorm.DB, secretKey string, log *zap.SugaredLogger) *Handler {
	return &Handler{
		database:   database,
		signingKey: []byte(secretKey),
		log:        log,
		now: func() int64 {
			return time.Now().UnixMilli()
		},
	}
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
