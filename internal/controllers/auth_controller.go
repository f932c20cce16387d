package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nyumbani/rental-service/internal/dtos"
	"github.com/nyumbani/rental-service/internal/services"
	"github.com/nyumbani/rental-service/internal/utils"
)

var authValidate = validator.New()

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(s *services.AuthService) *AuthController {
	return &AuthController{authService: s}
}

// POST /api/v1/auth/login/
func (c *AuthController) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON", nil, err)
		return
	}
	if err := authValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	resp, err := c.authService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) {
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeInvalidCredentials, "Invalid username or password", nil)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Login failed", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/auth/register/ (staff only)
func (c *AuthController) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON", nil, err)
		return
	}
	if err := authValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	user, err := c.authService.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, utils.ErrUsernameExists) {
			utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "Username already in use", nil)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not create user", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, user)
}
