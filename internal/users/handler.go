package users

import (
	"net/http"

	"pipmatrix/internal/auth"
	"pipmatrix/internal/httputil"
)

type Handler struct {
	svc     *Service
	authSvc *auth.Service
}

func NewHandler(svc *Service, authSvc *auth.Service) *Handler {
	return &Handler{svc: svc, authSvc: authSvc}
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request, userID int64) {
	user, err := h.authSvc.GetUser(r.Context(), userID)
	if err != nil {
		httputil.Fail(w, http.StatusNotFound, "user not found")
		return
	}
	account, err := h.svc.Account(r.Context(), userID)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	code, err := h.svc.ReferralCode(r.Context(), userID)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"user":          user,
		"account":       account,
		"referral_code": code,
	})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request, userID int64) {
	var upd ProfileUpdate
	if err := httputil.ReadJSON(r, &upd); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.UpdateProfile(r.Context(), userID, upd); err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.OK(w, "Profile updated successfully")
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request, userID int64) {
	d, err := h.svc.Dashboard(r.Context(), userID)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "dashboard": d})
}
