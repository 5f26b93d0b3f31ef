package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	appErr "github.com/lukinkratas/zapis-stavy/internal/pkg/errors"
	"github.com/lukinkratas/zapis-stavy/internal/pkg/response"
)

// Pinger is satisfied by *repo.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		handleError(c, fmt.Errorf("%w: ping: %w", appErr.ErrUnavailable, err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}
