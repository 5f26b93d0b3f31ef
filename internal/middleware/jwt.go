package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lukinkratas/zapis-stavy/internal/model"
	appErr "github.com/lukinkratas/zapis-stavy/internal/pkg/errors"
	"github.com/lukinkratas/zapis-stavy/internal/pkg/response"
)

const (
	ContextUserIDKey = "user_id"
	ContextUserKey   = "user"
)

// PrincipalResolver turns a bearer token into the stored user; *service.AuthService
// implements it.
type PrincipalResolver interface {
	CurrentUser(ctx context.Context, token string) (*model.User, error)
}

// JWTAuth rejects every missing, malformed, expired or orphaned token with the same
// 401 response.
func JWTAuth(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Fail(c, fmt.Errorf("%w: missing bearer token", appErr.ErrUnauthorized))
			return
		}
		user, err := resolver.CurrentUser(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			if !appErr.IsUnauthorized(err) {
				logutil.GetLogger(c.Request.Context()).Error("resolve principal failed",
					zap.String("request_id", c.GetString(ContextRequestIDKey)),
					zap.Error(err),
				)
			}
			response.Fail(c, err)
			return
		}
		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *model.User {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*model.User)
	return user
}
