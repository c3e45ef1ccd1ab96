package controller

import (
	"net/http"
	"strconv"

	pkgerrors "geoatlas/pkg/errors"
	"geoatlas/pkg/utils/logger"
	"geoatlas/pkg/utils/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// handler carries what every geo controller shares.
type handler struct {
	log *logger.Logger
}

func newHandler(log *logger.Logger) handler {
	if log == nil {
		log = logger.NewNop()
	}
	return handler{log: log}
}

// fail writes the error envelope. Server-side failures are logged with the cause.
func (h handler) fail(c *gin.Context, err error) {
	code := pkgerrors.GetCode(err)
	if code.HTTPStatus() >= http.StatusInternalServerError {
		h.log.Error(c.Request.Context(), "request failed",
			zap.String("path", c.FullPath()),
			zap.Int("code", int(code)),
			zap.Error(err),
		)
	} else {
		h.log.Debug(c.Request.Context(), "request rejected", zap.Int("code", int(code)), zap.Error(err))
	}
	response.Error(c, err)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}

// optionalID parses a positive integer query parameter; absent means zero.
func optionalID(c *gin.Context, key string) (int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid "+key)
		return 0, false
	}
	return id, true
}

// paging reads page and page_size. Range checks are left to the service.
func paging(c *gin.Context) (int, int, bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if err != nil {
		response.BadRequest(c, "Invalid page")
		return 0, 0, false
	}
	size, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil {
		response.BadRequest(c, "Invalid page_size")
		return 0, 0, false
	}
	return page, size, true
}

func expands(c *gin.Context, what string) bool {
	return c.Query("expand") == what
}

// NameRequest is the payload for entities without a parent.
type NameRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}
