package audit

import (
	"errors"
	"fmt"

	"ledger-backend/internal/auth"
	"ledger-backend/internal/database"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	Scope       models.PinScope    `json:"scope"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	IsUndone    bool               `json:"is_undone"`
	UndoneAt    *string            `json:"undone_at"`
}

// GET /api/audit-logs?entity_type=receipt&entity_id=1&limit=100
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.AuditLog{})

		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}
		if s := c.Query("entity_id"); s != "" {
			var eid uint
			if _, err := fmt.Sscan(s, &eid); err != nil || eid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "invalid entity_id")
			}
			dbq = dbq.Where("entity_id = ?", eid)
		}

		limit := c.QueryInt("limit", 200)
		if limit <= 0 || limit > 1000 {
			limit = 200
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list audit logs")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			var undoneAt *string
			if l.UndoneAt != nil {
				formatted := l.UndoneAt.Format("2006-01-02 15:04:05")
				undoneAt = &formatted
			}
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				Scope:       l.Scope,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
				IsUndone:    l.IsUndone,
				UndoneAt:    undoneAt,
			})
		}
		return c.JSON(resp)
	}
}

// POST /api/audit-logs/:id/undo (admin)
func UndoAuditLogHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var logID uint
		if _, err := fmt.Sscan(c.Params("id"), &logID); err != nil || logID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid log id")
		}

		err := UndoLog(database.DB, logID, auth.Scope(c))
		switch {
		case err == nil:
		case errors.Is(err, ErrAlreadyUndone):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Log or record not found")
		default:
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{"message": "Change undone"})
	}
}
