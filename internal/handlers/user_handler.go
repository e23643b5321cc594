package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chrona/internal/services"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.GetByID(c.Request.Context(), actorOf(c).UserID)
	if err != nil {
		respondError(c, "[user][me]", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
