package controller

import (
	"context"
	"time"

	"geoatlas/internal/common/db"
	pkgerrors "geoatlas/pkg/errors"
	"geoatlas/pkg/utils/logger"
	"geoatlas/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// Pinger is satisfied by the database and the cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

type poolStats interface {
	Stats() db.Stats
}

// HealthController reports whether the backing stores answer.
type HealthController struct {
	handler
	database Pinger
	cache    Pinger
}

// NewHealthController creates a HealthController. cache may be nil.
func NewHealthController(database, cache Pinger, log *logger.Logger) *HealthController {
	return &HealthController{handler: newHandler(log), database: database, cache: cache}
}

func (h *HealthController) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := gin.H{"database": "ok"}
	if err := h.database.Ping(ctx); err != nil {
		h.fail(c, pkgerrors.Wrap(err, pkgerrors.ServiceUnavailable).WithMessage("database unavailable"))
		return
	}
	if stats, ok := h.database.(poolStats); ok {
		status["pool"] = stats.Stats()
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			h.fail(c, pkgerrors.Wrap(err, pkgerrors.ServiceUnavailable).WithMessage("cache unavailable"))
			return
		}
		status["cache"] = "ok"
	}
	response.Success(c, status)
}
