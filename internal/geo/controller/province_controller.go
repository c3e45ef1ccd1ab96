package controller

import (
	"geoatlas/internal/geo/domain"
	"geoatlas/internal/geo/service"
	"geoatlas/pkg/utils/logger"
	"geoatlas/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// ProvinceRequest is the create/update payload for a province.
type ProvinceRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	CountryID *int64 `json:"country_id" binding:"omitempty,gt=0"`
}

// ProvinceController handles province endpoints.
type ProvinceController struct {
	handler
	query   *service.QueryService
	command *service.CommandService
}

func NewProvinceController(query *service.QueryService, command *service.CommandService, log *logger.Logger) *ProvinceController {
	return &ProvinceController{handler: newHandler(log), query: query, command: command}
}

func (h *ProvinceController) List(c *gin.Context) {
	page, size, ok := paging(c)
	if !ok {
		return
	}
	countryID, ok := optionalID(c, "country_id")
	if !ok {
		return
	}
	scope := service.Scope{ID: countryID, Name: c.Query("country_name")}
	result, err := h.query.ListProvinces(c.Request.Context(), scope, page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithPagination(c, result.Items, result.Total, result.Page, result.PageSize)
}

func (h *ProvinceController) Names(c *gin.Context) {
	page, size, ok := paging(c)
	if !ok {
		return
	}
	result, err := h.query.SearchProvinceNames(c.Request.Context(), c.Query("like"), page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithPagination(c, result.Items, result.Total, result.Page, result.PageSize)
}

func (h *ProvinceController) GetByName(c *gin.Context) {
	view, err := h.query.GetProvinceByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

func (h *ProvinceController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.query.GetProvince(c.Request.Context(), id, expands(c, "cities"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

func (h *ProvinceController) Create(c *gin.Context) {
	var req ProvinceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	view, err := h.command.CreateProvince(c.Request.Context(), service.ProvinceInput{Name: req.Name, CountryID: req.CountryID})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, view)
}

// Update replaces name and country. Cities of the province move with it.
func (h *ProvinceController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ProvinceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	view, err := h.command.UpdateProvince(c.Request.Context(), id, service.ProvinceInput{Name: req.Name, CountryID: req.CountryID})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

func (h *ProvinceController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.command.Delete(c.Request.Context(), domain.KindProvince, id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}
