package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/pos-backoffice/internal/auth"
	"github.com/diewo77/pos-backoffice/internal/httpx"
	"github.com/diewo77/pos-backoffice/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	Users *store.UsersRepository
}

func NewAuthHandler(users *store.UsersRepository) *AuthHandler {
	return &AuthHandler{Users: users}
}

// Login: POST /login – JSON or form with username/password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var username, password string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		username, password = body.Username, body.Password
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		username = r.FormValue("username")
		password = r.FormValue("password")
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"username": "required", "password": "required"})
		return
	}
	user, err := h.Users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "login_failed", nil)
		return
	}
	if user.Status != 1 {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, map[string]any{"id": user.ID, "username": user.Username, "role": user.Role})
}

// Logout: POST /logout – clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
