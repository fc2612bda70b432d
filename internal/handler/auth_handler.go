package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-online/internal/middleware"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/response"
	"github.com/stemsi/exstem-online/internal/service"
	"github.com/stemsi/exstem-online/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService     *service.AuthService
	identityService *service.IdentityService
	log             zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, identityService *service.IdentityService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		identityService: identityService,
		log:             log.With().Str("component", "auth_handler").Logger(),
	}
}

// StudentLogin godoc
// POST /api/v1/auth/student/login
// Resolves a roll number to a student and opens a login session.
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req model.StudentLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	identity, err := h.identityService.AuthenticateStudent(req.RollNumber)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrStudentNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.login(c, identity)
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Checks the administrator credentials and opens a login session.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	identity, err := h.identityService.AuthenticateAdmin(req.Username, req.Password)
	if err != nil {
		h.log.Warn().Str("ip", c.ClientIP()).Msg("Failed admin login")
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	h.login(c, identity)
}

func (h *AuthHandler) login(c *gin.Context, identity *model.Identity) {
	token, claims, err := h.authService.GenerateToken(identity)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to sign token")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := h.identityService.SetCurrentIdentity(c.Request.Context(), claims.Scope(), identity); err != nil {
		h.log.Error().Err(err).Msg("Failed to store current identity")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.log.Info().Str("user_id", identity.ID).Str("role", string(identity.Role)).Msg("Login")
	response.Success(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": claims.ExpiresAt.Time,
		"identity":   identity,
	})
}

// Logout godoc
// POST /api/v1/auth/logout
// Clears the identity of the token's login session.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.identityService.ClearCurrentIdentity(c.Request.Context(), claims.Scope()); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the identity of the current login session.
func (h *AuthHandler) Me(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"identity": identity})
}
