package handler

import (
	"context"
	"net/http"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

// CredentialService defines the behavior needed by AuthHandler.
type CredentialService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*usecase.LoginResult, error)
	Logout(ctx context.Context) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, input usecase.UpdateProfileInput) (*domain.User, error)
}

// AuthHandler handles registration, login and profile endpoints.
type AuthHandler struct {
	credentials CredentialService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(credentials CredentialService) *AuthHandler {
	return &AuthHandler{credentials: credentials}
}

// Register creates a new user.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.credentials.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, "failed to register", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserFromDomain(user))
}

// Login verifies credentials and issues a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.credentials.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, "login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginFromUseCase(result))
}

// Logout forgets the session user.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.credentials.Logout(r.Context()); err != nil {
		writeDomainError(w, "logout failed", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.credentials.GetUser(r.Context(), caller.ID)
	if err != nil {
		writeDomainError(w, "failed to get user", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// UpdateMe changes the authenticated user's username and password.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.credentials.UpdateProfile(r.Context(), req.ToUseCaseInput(caller.ID))
	if err != nil {
		writeDomainError(w, "failed to update profile", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}
