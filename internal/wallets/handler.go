package wallets

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pipmatrix/internal/httputil"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items := All()
	for i := range items {
		qr, err := QRDataURL(items[i].Address)
		if err != nil {
			httputil.Fail(w, http.StatusInternalServerError, err.Error())
			return
		}
		items[i].QRCode = qr
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "wallets": items})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	wallet, ok := Get(chi.URLParam(r, "id"))
	if !ok {
		httputil.Fail(w, http.StatusBadRequest, "Invalid cryptocurrency")
		return
	}
	qr, err := QRDataURL(wallet.Address)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	wallet.QRCode = qr
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "wallet": wallet})
}
