package controller

import (
	"geoatlas/internal/geo/domain"
	"geoatlas/internal/geo/service"
	"geoatlas/pkg/utils/logger"
	"geoatlas/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// CountryRequest is the create/update payload for a country.
type CountryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	ContinentID *int64 `json:"continent_id" binding:"omitempty,gt=0"`
}

// CountryController handles country endpoints.
type CountryController struct {
	handler
	query   *service.QueryService
	command *service.CommandService
}

func NewCountryController(query *service.QueryService, command *service.CommandService, log *logger.Logger) *CountryController {
	return &CountryController{handler: newHandler(log), query: query, command: command}
}

// List handles GET /countries, optionally scoped by continent_id or continent_name.
func (h *CountryController) List(c *gin.Context) {
	page, size, ok := paging(c)
	if !ok {
		return
	}
	continentID, ok := optionalID(c, "continent_id")
	if !ok {
		return
	}
	scope := service.Scope{ID: continentID, Name: c.Query("continent_name")}
	result, err := h.query.ListCountries(c.Request.Context(), scope, page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithPagination(c, result.Items, result.Total, result.Page, result.PageSize)
}

func (h *CountryController) Names(c *gin.Context) {
	page, size, ok := paging(c)
	if !ok {
		return
	}
	result, err := h.query.SearchCountryNames(c.Request.Context(), c.Query("like"), page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithPagination(c, result.Items, result.Total, result.Page, result.PageSize)
}

func (h *CountryController) GetByName(c *gin.Context) {
	view, err := h.query.GetCountryByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

func (h *CountryController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.query.GetCountry(c.Request.Context(), id, expands(c, "provinces"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

func (h *CountryController) Create(c *gin.Context) {
	var req CountryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	view, err := h.command.CreateCountry(c.Request.Context(), service.CountryInput{Name: req.Name, ContinentID: req.ContinentID})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, view)
}

// Update replaces name and continent; an absent continent_id detaches the country.
func (h *CountryController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CountryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	view, err := h.command.UpdateCountry(c.Request.Context(), id, service.CountryInput{Name: req.Name, ContinentID: req.ContinentID})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

func (h *CountryController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.command.Delete(c.Request.Context(), domain.KindCountry, id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}
