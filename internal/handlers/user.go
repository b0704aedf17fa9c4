package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/report-tracker-api/internal/dto"
	"github.com/yukikurage/report-tracker-api/internal/middleware"
	"github.com/yukikurage/report-tracker-api/internal/patch"
	"github.com/yukikurage/report-tracker-api/internal/services"
	"github.com/yukikurage/report-tracker-api/internal/utils"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *services.UserService
	log         *zap.Logger
}

func NewUserHandler(userService *services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page := utils.GetPaginationParams(c)
	users, total, err := h.userService.List(c.Request.Context(), middleware.GetActor(c), page)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserListResponse(users, page, total))
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		DisplayName string `json:"displayName" binding:"required,max=255"`
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required"`
		Role        string `json:"role"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), middleware.GetActor(c), services.CreateUserInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// UpdateUser applies only the keys present in the body. An empty password
// keeps the current one.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		DisplayName patch.Field[string] `json:"displayName"`
		Email       patch.Field[string] `json:"email"`
		Role        patch.Field[string] `json:"role"`
		Password    patch.Field[string] `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), middleware.GetActor(c), id, services.UpdateUserInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Role:        req.Role,
		Password:    req.Password,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
