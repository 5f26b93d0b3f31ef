package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lukinkratas/zapis-stavy/internal/middleware"
	"github.com/lukinkratas/zapis-stavy/internal/model"
	appErr "github.com/lukinkratas/zapis-stavy/internal/pkg/errors"
	"github.com/lukinkratas/zapis-stavy/internal/pkg/response"
)

type pageQuery struct {
	Offset int `form:"offset"`
	Limit  int `form:"limit"`
}

func getUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDKey)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", appErr.ErrInvalid, fmt.Sprintf(format, args...))
}

// parseID reads a path parameter that must be a UUID.
func parseID(c *gin.Context, name string) (string, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return "", invalid("%s must be a uuid", name)
	}
	return id.String(), nil
}

func parsePage(c *gin.Context) (model.Page, error) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return model.Page{}, invalid("offset and limit must be integers")
	}
	return model.Page{Offset: q.Offset, Limit: q.Limit}, nil
}

func bindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// handleError logs the failure and hands it to the shared error translation.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status, _ := response.StatusOf(err)
	log := logutil.GetLogger(c.Request.Context()).With(
		zap.String("request_id", c.GetString(middleware.ContextRequestIDKey)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
		zap.Int("status", status),
		zap.Error(err),
	)
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Debug("request rejected")
	}
	response.Fail(c, err)
}
