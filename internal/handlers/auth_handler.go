package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shukatsu-compass/backend/internal/dtos"
	"github.com/shukatsu-compass/backend/internal/services"
)

type AuthHandler struct {
	Users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{Users: users}
}

// Register is the POST /auth/register endpoint
func (h *AuthHandler) Register(c *gin.Context) {
	var req dtos.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	token, err := h.Users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dtos.TokenResponse{Token: token})
}

// Guest is the POST /auth/guest endpoint. It hands out a device token the
// client presents on later requests via the X-Device-Token header.
func (h *AuthHandler) Guest(c *gin.Context) {
	guest, err := h.Users.CreateGuest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dtos.GuestTokenResponse{DeviceToken: guest.DeviceToken})
}

// Login is the POST /auth/login endpoint
func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	token, err := h.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.TokenResponse{Token: token})
}
