package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/response"
	"github.com/stemsi/exstem-online/internal/service"
	"github.com/stemsi/exstem-online/internal/validator"
)

// UserHandler serves the account registration API.
type UserHandler struct {
	userService *service.UserService
	log         zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log.With().Str("component", "user_handler").Logger(),
	}
}

// Register godoc
// POST /register
func (h *UserHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
			return
		}
		h.log.Error().Err(err).Msg("Register failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
}

// Login godoc
// POST /login
func (h *UserHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Login(c.Request.Context(), &req)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrUserNotFound)
	case errors.Is(err, service.ErrWrongPassword):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case err != nil:
		h.log.Error().Err(err).Msg("Login failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	default:
		response.Success(c, http.StatusOK, gin.H{"message": "Login successful", "user": user})
	}
}
