package referrals

import (
	"net/http"

	"pipmatrix/internal/httputil"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request, userID int64) {
	sum, err := h.svc.Summary(r.Context(), userID)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"referral_code":   sum.ReferralCode,
		"total_referrals": sum.TotalReferrals,
		"total_bonus":     sum.TotalBonus,
		"referrals":       sum.Referrals,
	})
}
