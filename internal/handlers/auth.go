package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kle_back_end/internal/middleware"
	"kle_back_end/internal/services"
)

// POST /register
func (h *Handler) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please enter all fields"})
		return
	}

	err := h.Auth.Register(c.Request.Context(), input)
	if err != nil {
		fail(c, err, statusTable{
			services.ErrValidation: http.StatusBadRequest,
			services.ErrConflict:   http.StatusBadRequest,
		}, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User is created successfully"})
}

// POST /login : toute erreur répond 400.
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please enter all fields"})
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrAuth) || errors.Is(err, services.ErrNotFound) {
			c.Set(middleware.LoginFailedKey, true)
		}
		fail(c, err, nil, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User is logged in successfully",
		"id":      res.ID,
		"name":    res.Name,
		"token":   res.Token,
		"email":   res.Email,
		"role":    res.Role,
	})
}

// GET /me
func (h *Handler) Me(c *gin.Context) {
	user, err := h.Auth.Resolve(c.Request.Context(), middleware.Claims(c))
	if err != nil {
		fail(c, err, statusTable{
			services.ErrAuth:     http.StatusUnauthorized,
			services.ErrNotFound: http.StatusNotFound,
		}, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
