package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"campusfund/internal/domain"
	"campusfund/internal/middleware"
	"campusfund/internal/sqlinline"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string     `json:"token"`
	User  profileDTO `json:"user"`
}

type profileDTO struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

const tokenTTL = 24 * time.Hour

func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "a valid email is required")
		return
	}
	if req.DisplayName == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "display name is required")
		return
	}
	if len(req.Password) < 8 {
		a.error(w, http.StatusBadRequest, "bad_request", "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.fail(w, err)
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertUser, req.Email, req.DisplayName, string(hash))
	var userID string
	if err := row.Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusBadRequest, "bad_request", "email is already registered")
			return
		}
		a.fail(w, err)
		return
	}

	a.issueToken(w, http.StatusCreated, userID, req.Email, req.DisplayName)
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectUserByEmail, req.Email)
	var user domain.User
	if err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
			return
		}
		a.fail(w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
		return
	}

	a.issueToken(w, http.StatusOK, user.ID, user.Email, user.DisplayName)
}

// issueToken mints the session token. The admin role comes from the
// configured allowlist, never from client input.
func (a *App) issueToken(w http.ResponseWriter, status int, userID, email, displayName string) {
	role := domain.RoleMember
	if a.IsAdminEmail != nil && a.IsAdminEmail(email) {
		role = domain.RoleAdmin
	}
	token, err := middleware.SignToken(a.JWTSecret, middleware.Identity{
		ID:    userID,
		Email: email,
		Name:  displayName,
		Role:  role,
	}, tokenTTL)
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign token failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, status, authResponse{
		Token: token,
		User:  profileDTO{ID: userID, Email: email, DisplayName: displayName, Role: role},
	})
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	ident, ok := a.currentUser(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectUserByID, ident.ID)
	var user domain.User
	if err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, profileDTO{ID: user.ID, Email: user.Email, DisplayName: user.DisplayName, Role: ident.Role})
}
