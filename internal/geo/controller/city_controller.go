package controller

import (
	"geoatlas/internal/geo/domain"
	"geoatlas/internal/geo/service"
	"geoatlas/pkg/utils/logger"
	"geoatlas/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// CityRequest is the create/update payload for a city. The country is
// always derived from the province.
type CityRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	ProvinceID *int64 `json:"province_id" binding:"omitempty,gt=0"`
}

// CityController handles city endpoints.
type CityController struct {
	handler
	query   *service.QueryService
	command *service.CommandService
}

func NewCityController(query *service.QueryService, command *service.CommandService, log *logger.Logger) *CityController {
	return &CityController{handler: newHandler(log), query: query, command: command}
}

// List handles GET /cities scoped by at most one of province_id,
// province_name, country_id and country_name.
func (h *CityController) List(c *gin.Context) {
	page, size, ok := paging(c)
	if !ok {
		return
	}
	provinceID, ok := optionalID(c, "province_id")
	if !ok {
		return
	}
	countryID, ok := optionalID(c, "country_id")
	if !ok {
		return
	}
	scope := service.CityScope{
		Province: service.Scope{ID: provinceID, Name: c.Query("province_name")},
		Country:  service.Scope{ID: countryID, Name: c.Query("country_name")},
	}
	result, err := h.query.ListCities(c.Request.Context(), scope, page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithPagination(c, result.Items, result.Total, result.Page, result.PageSize)
}

func (h *CityController) Names(c *gin.Context) {
	page, size, ok := paging(c)
	if !ok {
		return
	}
	result, err := h.query.SearchCityNames(c.Request.Context(), c.Query("like"), page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithPagination(c, result.Items, result.Total, result.Page, result.PageSize)
}

func (h *CityController) GetByName(c *gin.Context) {
	view, err := h.query.GetCityByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

// Get handles GET /cities/:id; ?expand=province joins the province.
func (h *CityController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.query.GetCity(c.Request.Context(), id, expands(c, "province"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

func (h *CityController) Create(c *gin.Context) {
	var req CityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	view, err := h.command.CreateCity(c.Request.Context(), service.CityInput{Name: req.Name, ProvinceID: req.ProvinceID})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, view)
}

func (h *CityController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	view, err := h.command.UpdateCity(c.Request.Context(), id, service.CityInput{Name: req.Name, ProvinceID: req.ProvinceID})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

func (h *CityController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.command.Delete(c.Request.Context(), domain.KindCity, id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}
