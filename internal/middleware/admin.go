package middleware

import (
	"crypto/subtle"
	"slices"
	"strings"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// OperatorLocal holds the name of the admin acting on the request.
const OperatorLocal = "admin_operator"

// AdminRequired lets a request through when any of these hold:
// 1. X-Admin-Token matches the configured token
// 2. the JWT email or subject is in the configured admin lists
// 3. the user row has role "admin"
// Must run after JWTProtected.
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)
	adminUserIDs := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		sess, err := session.FromFiber(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		operator := sess.Email
		if operator == "" {
			operator = sess.UserID.String()
		}

		if cfg.AdminToken != "" {
			if subtle.ConstantTimeCompare([]byte(c.Get("X-Admin-Token")), []byte(cfg.AdminToken)) == 1 {
				c.Locals(OperatorLocal, operator)
				return c.Next()
			}
		}

		if slices.Contains(adminEmails, strings.ToLower(sess.Email)) || slices.Contains(adminUserIDs, sess.UserID.String()) {
			c.Locals(OperatorLocal, operator)
			return c.Next()
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, "id = ?", sess.UserID).Error; err == nil && user.Role == "admin" {
			c.Locals(OperatorLocal, operator)
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
