package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lukinkratas/zapis-stavy/internal/pkg/response"
	"github.com/lukinkratas/zapis-stavy/internal/service"
)

type MeterHandler struct {
	meters *service.MeterService
}

func NewMeterHandler(meters *service.MeterService) *MeterHandler {
	return &MeterHandler{meters: meters}
}

// meterRequest has no owner field; the owner is always the caller.
type meterRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (r meterRequest) input() service.MeterInput {
	return service.MeterInput{Name: r.Name, Description: r.Description}
}

func (h *MeterHandler) Create(c *gin.Context) {
	var req meterRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}
	meter, err := h.meters.Create(c.Request.Context(), getUserID(c), req.input())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, meter)
}

func (h *MeterHandler) List(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		handleError(c, err)
		return
	}
	meters, err := h.meters.List(c.Request.Context(), getUserID(c), page)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, meters)
}

func (h *MeterHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}
	page, err := parsePage(c)
	if err != nil {
		handleError(c, err)
		return
	}
	meter, err := h.meters.Get(c.Request.Context(), getUserID(c), id, page)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, meter)
}

func (h *MeterHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}
	var req meterRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}
	meter, err := h.meters.Update(c.Request.Context(), getUserID(c), id, req.input())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, meter)
}

func (h *MeterHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.meters.Delete(c.Request.Context(), getUserID(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.NoContent(c)
}
