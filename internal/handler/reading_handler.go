package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lukinkratas/zapis-stavy/internal/pkg/response"
	"github.com/lukinkratas/zapis-stavy/internal/service"
)

type ReadingHandler struct {
	readings *service.ReadingService
}

func NewReadingHandler(readings *service.ReadingService) *ReadingHandler {
	return &ReadingHandler{readings: readings}
}

type readingCreateRequest struct {
	MeterID string   `json:"meter_id" binding:"required,uuid"`
	Value   *float64 `json:"value" binding:"required"`
}

type readingUpdateRequest struct {
	Value *float64 `json:"value"`
}

func (h *ReadingHandler) Create(c *gin.Context) {
	var req readingCreateRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}
	reading, err := h.readings.Create(c.Request.Context(), getUserID(c), req.MeterID, req.Value)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, reading)
}

func (h *ReadingHandler) ListByMeter(c *gin.Context) {
	meterID, err := parseID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}
	page, err := parsePage(c)
	if err != nil {
		handleError(c, err)
		return
	}
	readings, err := h.readings.ListByMeter(c.Request.Context(), getUserID(c), meterID, page)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, readings)
}

func (h *ReadingHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}
	var req readingUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}
	reading, err := h.readings.Update(c.Request.Context(), getUserID(c), id, req.Value)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, reading)
}

func (h *ReadingHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.readings.Delete(c.Request.Context(), getUserID(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.NoContent(c)
}
