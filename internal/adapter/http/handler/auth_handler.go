package handler

import (
	"encoding/json"
	"net/http"

	"github.com/iho/shopbook/internal/adapter/http/dto"
	"github.com/iho/shopbook/internal/adapter/http/middleware"
	"github.com/iho/shopbook/internal/infrastructure/auth"
	"github.com/iho/shopbook/internal/usecase"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	userUC     *usecase.UserUseCase
	jwtManager *auth.JWTManager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userUC *usecase.UserUseCase, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{
		userUC:     userUC,
		jwtManager: jwtManager,
	}
}

// Register creates a new user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.userUC.Register(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to register", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.UserFromDomain(user))
}

// Login checks credentials and issues a JWT token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.userUC.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to login", err.Error())

		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  dto.UserFromDomain(user),
	})
}

// GetCurrentUser returns the current authenticated user
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	full, err := h.userUC.GetUser(r.Context(), user.ID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get user", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(full))
}
