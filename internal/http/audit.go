package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

const defaultAuditLimit = 25

type AuditController struct {
	events AuditReader
}

func NewAuditController(events AuditReader) *AuditController {
	return &AuditController{
		events: events,
	}
}

// GetAuditEvents returns paginated audit events as JSON, most recent first.
// GET /api/audit?page=&limit=&type=
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page := parsePageQuery(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAuditLimit)))
	if limit < 1 || limit > 100 {
		limit = defaultAuditLimit
	}

	eventType := c.Query("type")
	offset := (page - 1) * limit
	ctx := c.Request.Context()

	var events []entities.AuditEvent
	var total int64
	var err error

	if eventType != "" {
		events, total, err = ac.events.GetEventsByType(ctx, entities.AuditEventType(eventType), limit, offset)
	} else {
		events, total, err = ac.events.GetEvents(ctx, limit, offset)
	}

	if err != nil {
		log.Printf("Failed to load audit events: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load audit events",
		})
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	if events == nil {
		events = []entities.AuditEvent{}
	}

	c.JSON(http.StatusOK, gin.H{
		"events":       events,
		"page":         page,
		"limit":        limit,
		"total_pages":  totalPages,
		"total_events": total,
	})
}
