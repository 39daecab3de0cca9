package handlers

import (
	"context"

	"forms-service/internal/models"
	"forms-service/internal/services"
	"forms-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List godoc
// @Summary List users (admin)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort fields, '-' for descending"
// @Success 200 {object} response.Envelope{data=[]models.User}
// @Failure 403 {object} models.ErrorResponse
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, _, err := h.users.List(c.Request.Context(), listOptions(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, users, len(users))
}

// ByIDs godoc
// @Summary Users by id
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UserIDsRequest true "User ids"
// @Success 200 {object} response.Envelope{data=[]models.User}
// @Failure 400 {object} models.ErrorResponse
// @Router /users [post]
func (h *UserHandler) ByIDs(c *gin.Context) {
	var req models.UserIDsRequest
	if !bindJSON(c, &req) {
		return
	}
	users, err := h.users.ByIDs(c.Request.Context(), req.Users)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, users, len(users))
}

// Online godoc
// @Summary Users with an open realtime connection
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.User}
// @Failure 401 {object} models.ErrorResponse
// @Router /users/online [get]
func (h *UserHandler) Online(c *gin.Context) {
	users, err := h.users.Online(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, users, len(users))
}

// bulk runs one of the admin bulk actions on the ids in the body.
func (h *UserHandler) bulk(c *gin.Context, action func(context.Context, []string) (string, error)) {
	var req models.UserIDsRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := action(c.Request.Context(), req.Users)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, msg)
}

// Block godoc
// @Summary Block users (admin)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UserIDsRequest true "User ids"
// @Success 200 {object} response.Envelope
// @Router /users/block [post]
func (h *UserHandler) Block(c *gin.Context) { h.bulk(c, h.users.Block) }

// Unblock godoc
// @Summary Unblock users (admin)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UserIDsRequest true "User ids"
// @Success 200 {object} response.Envelope
// @Router /users/unblock [post]
func (h *UserHandler) Unblock(c *gin.Context) { h.bulk(c, h.users.Unblock) }

// MakeAdmin godoc
// @Summary Grant the admin role (admin)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UserIDsRequest true "User ids"
// @Success 200 {object} response.Envelope
// @Router /users/admin [post]
func (h *UserHandler) MakeAdmin(c *gin.Context) { h.bulk(c, h.users.MakeAdmin) }

// MakeUser godoc
// @Summary Revoke the admin role (admin)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UserIDsRequest true "User ids"
// @Success 200 {object} response.Envelope
// @Router /users/user [post]
func (h *UserHandler) MakeUser(c *gin.Context) { h.bulk(c, h.users.MakeUser) }

// Delete godoc
// @Summary Delete users (admin)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UserIDsRequest true "User ids"
// @Success 200 {object} response.Envelope
// @Router /users/delete [post]
func (h *UserHandler) Delete(c *gin.Context) { h.bulk(c, h.users.Delete) }
