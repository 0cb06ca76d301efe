package auth

import (
	"errors"
	"net/http"
	"strings"

	"pipmatrix/internal/httputil"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	Country      string `json:"country"`
	ReferralCode string `json:"referral_code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.svc.Register(r.Context(), RegisterInput{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Country:      req.Country,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	token, _, err := h.svc.Login(r.Context(), user.Email, req.Password)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Registration successful",
		"access_token": token,
		"user":         map[string]any{"id": user.ID, "username": user.Username, "email": user.Email},
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httputil.Fail(w, http.StatusUnauthorized, err.Error())
			return
		}
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Login successful",
		"access_token": token,
		"user": map[string]any{
			"id":        user.ID,
			"username":  user.Username,
			"email":     user.Email,
			"full_name": user.FullName,
		},
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ int64) {
	token := bearerToken(r)
	if token != "" {
		if err := h.svc.Logout(r.Context(), token); err != nil {
			httputil.Fail(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	httputil.OK(w, "Logged out successfully")
}

// Check reports whether the request carries a usable token. It never
// fails: an anonymous caller just gets authenticated=false.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	userID, err := h.svc.ParseToken(r.Context(), token)
	if err != nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	user, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":        user.ID,
			"username":  user.Username,
			"email":     user.Email,
			"full_name": user.FullName,
		},
	})
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
