package http

import (
	"encoding/json"
	"net/http"
	"time"

	"libraryapi/internal/auth"
	"libraryapi/internal/circulation"
)

// AuthHandler issues tokens against the identity collaborator. Everything
// else about accounts (registration, password reset) lives outside this
// service.
type AuthHandler struct {
	users     circulation.UserDirectory
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthHandler(users circulation.UserDirectory, jwtSecret string) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret, tokenTTL: 24 * time.Hour}
}

type loginRequestBody struct {
	User     string `json:"user" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON body", nil)
		return
	}
	if details := ValidateStruct(body); details != nil {
		JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid request", details)
		return
	}

	user, err := h.users.GetByLogin(r.Context(), body.User)
	if err != nil || !user.IsActive || !auth.VerifyPassword(user.Password, body.Password) {
		JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", nil)
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, user.ID, user.Role, h.tokenTTL)
	if err != nil {
		JSONError(w, http.StatusInternalServerError, "INTERNAL", "server error", nil)
		return
	}
	JSONSuccess(w, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	}, nil)
}
