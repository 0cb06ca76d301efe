package notifications

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pipmatrix/internal/httputil"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request, userID int64) {
	items, err := h.svc.List(r.Context(), userID, 20)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"notifications": items,
	})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.Fail(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if err := h.svc.MarkRead(r.Context(), userID, id); err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Success: true})
}
