package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/otaslabs/otas-api/internal/middleware"
	"github.com/otaslabs/otas-api/internal/services"
	"github.com/otaslabs/otas-api/pkg/dto"
	"github.com/rs/zerolog/log"
)

type UserHandler struct {
	userService UserServiceInterface
	jwtService  *services.JWTService
}

func NewUserHandler(userService UserServiceInterface, jwtService *services.JWTService) *UserHandler {
	return &UserHandler{userService: userService, jwtService: jwtService}
}

// Create handles POST /api/user/v1/create.
func (h *UserHandler) Create(c *drift.Context) {
	var req dto.CreateUserRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("invalid_json"))
		return
	}

	var missing []string
	if strings.TrimSpace(req.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(req.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("missing_fields: "+strings.Join(missing, ", ")))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("invalid_email_format"))
		return
	}
	if len(req.Password) < 6 {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("password_too_short"))
		return
	}
	// bcrypt rejects inputs over 72 bytes.
	if len(req.Password) > 72 {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("password_too_long"))
		return
	}

	user, err := h.userService.Create(c.Request.Context(),
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.MiddleName),
		strings.TrimSpace(req.LastName), email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			_ = c.JSON(http.StatusBadRequest, dto.Fail("user_already_exists"))
			return
		}
		log.Error().Err(err).Msg("user create failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("user_creation_failed"))
		return
	}

	token, err := h.jwtService.GenerateUserToken(user.ID, user.Email)
	if err != nil {
		log.Error().Err(err).Msg("user token issue failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("user_creation_failed"))
		return
	}

	_ = c.JSON(http.StatusCreated, dto.OK("user_created", dto.AuthResponse{
		User:     dto.NewUserResponse(user),
		JWTToken: token,
	}))
}

// Login handles POST /api/user/v1/login. Unknown email and wrong password are
// indistinguishable to the caller.
func (h *UserHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("invalid_json"))
		return
	}

	if req.Email == "" || req.Password == "" {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail("login_failed"))
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail("login_failed"))
		return
	}

	token, err := h.jwtService.GenerateUserToken(user.ID, user.Email)
	if err != nil {
		log.Error().Err(err).Msg("user token issue failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("login_failed"))
		return
	}

	_ = c.JSON(http.StatusOK, dto.OK("login_success", dto.AuthResponse{
		User:     dto.NewUserResponse(user),
		JWTToken: token,
	}))
}

// Authenticate handles GET /api/user/v1/authenticate, echoing the identity
// resolved by UserAuth.
func (h *UserHandler) Authenticate(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeInvalidToken))
		return
	}

	_ = c.JSON(http.StatusOK, dto.OK("user_authenticated", map[string]any{
		"user": dto.NewUserResponse(user),
	}))
}

// Edit handles POST /api/user/v1/edit.
func (h *UserHandler) Edit(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeInvalidToken))
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("invalid_json"))
		return
	}

	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("missing_fields: first_name, last_name"))
		return
	}

	updated, err := h.userService.UpdateProfile(c.Request.Context(), user.ID,
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.MiddleName), strings.TrimSpace(req.LastName))
	if err != nil {
		log.Error().Err(err).Msg("user profile update failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("profile_update_failed"))
		return
	}

	_ = c.JSON(http.StatusOK, dto.OK("user_profile_updated", map[string]any{
		"user": dto.NewUserResponse(updated),
	}))
}

// UpdatePassword handles POST /api/user/v1/reset-password/update.
func (h *UserHandler) UpdatePassword(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeInvalidToken))
		return
	}

	var req dto.UpdatePasswordRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("invalid_json"))
		return
	}

	if len(req.Password) < 6 {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("password_too_short"))
		return
	}
	if len(req.Password) > 72 {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("password_too_long"))
		return
	}

	if err := h.userService.UpdatePassword(c.Request.Context(), user.ID, req.Password); err != nil {
		log.Error().Err(err).Msg("password update failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("password_update_failed"))
		return
	}

	_ = c.JSON(http.StatusOK, dto.OK("password_updated", nil))
}
