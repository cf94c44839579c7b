package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GlebRadaev/finance/internal/domain"
	"github.com/GlebRadaev/finance/internal/dto"
	"github.com/GlebRadaev/finance/internal/service/authservice"
	"github.com/GlebRadaev/finance/pkg/utils"
)

//go:generate mockgen -source=auth.go -destination=mock_auth.go -package=auth

type Service interface {
	Register(ctx context.Context, username, password, confirmation string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GenerateToken(userID int) (string, error)
}

type AuthHandler struct {
	authService Service
}

func New(authService Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register godoc
//
//	@Summary		Register a new user
//	@Description	Create a new account credited with the starting cash and get a JWT token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.RegisterRequestDTO	true	"Register request body"
//	@Success		200		{object}	dto.RegisterResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body, missing fields or passwords do not match"
//	@Failure		409		{object}	utils.Response	"Username already taken"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/user/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequestDTO
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.authService.Register(r.Context(), req.Username, req.Password, req.Confirmation)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrMissingCredentials), errors.Is(err, authservice.ErrPasswordMismatch):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrUserExists):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		case domain.IsTransient(err):
			utils.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	token, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	utils.RespondWithJSON(w, http.StatusOK, dto.RegisterResponseDTO{
		Message: "User successfully registered",
	})
}

// Login godoc
//
//	@Summary		Authenticate user
//	@Description	Log in with a user account and get a JWT token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.LoginRequestDTO	true	"Login request body"
//	@Success		200		{object}	dto.LoginResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Invalid credentials"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Failure		503		{object}	utils.Response	"Store unavailable"
//	@Router			/api/user/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequestDTO
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, authservice.ErrMissingCredentials.Error())
		return
	}
	user, err := h.authService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrInvalidCredentials):
			utils.RespondWithError(w, http.StatusUnauthorized, err.Error())
		case domain.IsTransient(err):
			utils.RespondWithError(w, http.StatusServiceUnavailable, domain.ErrStoreUnavailable.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	token, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	utils.RespondWithJSON(w, http.StatusOK, dto.LoginResponseDTO{
		Message: "User successfully authenticated",
	})
}
