package controller

import (
	"geoatlas/internal/geo/domain"
	"geoatlas/internal/geo/service"
	"geoatlas/pkg/utils/logger"
	"geoatlas/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// ContinentController handles continent endpoints.
type ContinentController struct {
	handler
	query   *service.QueryService
	command *service.CommandService
}

// NewContinentController creates a new ContinentController.
func NewContinentController(query *service.QueryService, command *service.CommandService, log *logger.Logger) *ContinentController {
	return &ContinentController{handler: newHandler(log), query: query, command: command}
}

func (h *ContinentController) List(c *gin.Context) {
	page, size, ok := paging(c)
	if !ok {
		return
	}
	result, err := h.query.ListContinents(c.Request.Context(), page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithPagination(c, result.Items, result.Total, result.Page, result.PageSize)
}

func (h *ContinentController) Names(c *gin.Context) {
	page, size, ok := paging(c)
	if !ok {
		return
	}
	result, err := h.query.SearchContinentNames(c.Request.Context(), c.Query("like"), page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithPagination(c, result.Items, result.Total, result.Page, result.PageSize)
}

func (h *ContinentController) GetByName(c *gin.Context) {
	view, err := h.query.GetContinentByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

// Get handles GET /continents/:id; ?expand=countries loads the countries.
func (h *ContinentController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.query.GetContinent(c.Request.Context(), id, expands(c, "countries"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

func (h *ContinentController) Create(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	view, err := h.command.CreateContinent(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, view)
}

func (h *ContinentController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	view, err := h.command.UpdateContinent(c.Request.Context(), id, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

// Delete removes the continent together with its countries, provinces and cities.
func (h *ContinentController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.command.Delete(c.Request.Context(), domain.KindContinent, id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}
