package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lukinkratas/zapis-stavy/internal/middleware"
	"github.com/lukinkratas/zapis-stavy/internal/pkg/response"
	"github.com/lukinkratas/zapis-stavy/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type userUpdateRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password"`
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}
	user, err := h.users.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}
	var req userUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}
	user, err := h.users.Update(c.Request.Context(), middleware.CurrentUser(c), id, service.UserInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.users.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.NoContent(c)
}
