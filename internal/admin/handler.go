package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pipmatrix/internal/httputil"
	"pipmatrix/internal/trading"
)

type Handler struct {
	svc   *Service
	rules *trading.RuleStore
}

func NewHandler(svc *Service, rules *trading.RuleStore) *Handler {
	return &Handler{svc: svc, rules: rules}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request, _ int64) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "stats": st})
}

func (h *Handler) Users(w http.ResponseWriter, r *http.Request, _ int64) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	users, total, err := h.svc.Users(r.Context(), page, perPage)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"users":   users,
		"total":   total,
	})
}

func (h *Handler) Signups(w http.ResponseWriter, r *http.Request, _ int64) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	signups, err := h.svc.Signups(r.Context(), days)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "signups": signups})
}

func (h *Handler) PendingTransactions(w http.ResponseWriter, r *http.Request, _ int64) {
	items, err := h.svc.PendingTransactions(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "transactions": items})
}

type reviewRequest struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

// readReview tolerates an empty body: approvals do not require notes.
func readReview(r *http.Request) reviewRequest {
	var req reviewRequest
	_ = httputil.ReadJSON(r, &req)
	return req
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, successMsg string, fn func(id int64, req reviewRequest) error) {
	id, err := pathID(r)
	if err != nil {
		httputil.Fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	req := readReview(r)
	if err := fn(id, req); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httputil.Fail(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotPending), errors.Is(err, ErrInsufficientFunds):
			httputil.Fail(w, http.StatusBadRequest, err.Error())
		default:
			httputil.Fail(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	httputil.OK(w, successMsg)
}

func (h *Handler) ApproveDeposit(w http.ResponseWriter, r *http.Request, _ int64) {
	h.review(w, r, "Deposit approved", func(id int64, req reviewRequest) error {
		return h.svc.ApproveDeposit(r.Context(), id, req.Notes)
	})
}

func (h *Handler) RejectDeposit(w http.ResponseWriter, r *http.Request, _ int64) {
	h.review(w, r, "Deposit rejected", func(id int64, req reviewRequest) error {
		return h.svc.RejectDeposit(r.Context(), id, req.Reason)
	})
}

func (h *Handler) ApproveWithdrawal(w http.ResponseWriter, r *http.Request, _ int64) {
	h.review(w, r, "Withdrawal approved", func(id int64, req reviewRequest) error {
		return h.svc.ApproveWithdrawal(r.Context(), id, req.Notes)
	})
}

func (h *Handler) RejectWithdrawal(w http.ResponseWriter, r *http.Request, _ int64) {
	h.review(w, r, "Withdrawal rejected", func(id int64, req reviewRequest) error {
		return h.svc.RejectWithdrawal(r.Context(), id, req.Reason)
	})
}

func (h *Handler) ApproveSubscription(w http.ResponseWriter, r *http.Request, _ int64) {
	h.review(w, r, "Subscription activated", func(id int64, _ reviewRequest) error {
		return h.svc.ApproveSubscription(r.Context(), id)
	})
}

func (h *Handler) RejectSubscription(w http.ResponseWriter, r *http.Request, _ int64) {
	h.review(w, r, "Subscription rejected", func(id int64, req reviewRequest) error {
		return h.svc.RejectSubscription(r.Context(), id, req.Reason)
	})
}

func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request, _ int64) {
	rules, err := h.rules.All(r.Context())
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "rules": rules})
}

func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request, _ int64) {
	var in trading.RuleInput
	if err := httputil.ReadJSON(r, &in); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	rule, err := h.rules.Create(r.Context(), in)
	if err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Trade rule created",
		"rule":    rule,
	})
}

func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request, _ int64) {
	id, err := pathID(r)
	if err != nil {
		httputil.Fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	var in trading.RuleInput
	if err := httputil.ReadJSON(r, &in); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	rule, err := h.rules.Update(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, trading.ErrRuleNotFound) {
			httputil.Fail(w, http.StatusNotFound, err.Error())
			return
		}
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Trade rule updated",
		"rule":    rule,
	})
}

func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request, _ int64) {
	id, err := pathID(r)
	if err != nil {
		httputil.Fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.rules.Delete(r.Context(), id); err != nil {
		if errors.Is(err, trading.ErrRuleNotFound) {
			httputil.Fail(w, http.StatusNotFound, err.Error())
			return
		}
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.OK(w, "Trade rule deleted")
}
