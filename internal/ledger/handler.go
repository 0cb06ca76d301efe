package ledger

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pipmatrix/internal/httputil"
	"pipmatrix/internal/wallets"
)

const maxReceiptBytes = 16 << 20

var allowedReceiptExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".pdf":  true,
}

type Handler struct {
	svc       *Service
	uploadDir string
}

func NewHandler(svc *Service, uploadDir string) *Handler {
	return &Handler{svc: svc, uploadDir: uploadDir}
}

func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request, userID int64) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	items, total, err := h.svc.List(r.Context(), userID, page, perPage, r.URL.Query().Get("type"))
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	pages := (total + perPage - 1) / perPage
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"transactions": items,
		"total":        total,
		"pages":        pages,
		"current_page": page,
	})
}

type depositRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	WalletAddress string          `json:"wallet_address"`
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request, userID int64) {
	var req depositRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	ref, err := h.svc.CreateDeposit(r.Context(), userID, req.Amount, req.PaymentMethod, req.WalletAddress)
	if err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Deposit request submitted",
		"reference": ref,
	})
}

type cryptoDepositRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	CryptoType string          `json:"crypto_type"`
	TxID       string          `json:"txid"`
}

// CryptoDeposit accepts either a JSON body or a multipart form with an
// optional receipt file.
func (h *Handler) CryptoDeposit(w http.ResponseWriter, r *http.Request, userID int64) {
	var req cryptoDepositRequest
	receiptFilename := ""

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
			httputil.Fail(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("amount")))
		if err != nil {
			httputil.Fail(w, http.StatusBadRequest, "invalid amount")
			return
		}
		req.Amount = amount
		req.CryptoType = r.FormValue("crypto_type")
		req.TxID = r.FormValue("txid")
		if file, header, err := r.FormFile("receipt"); err == nil {
			defer file.Close()
			name, err := h.saveReceipt(file, header, userID)
			if err != nil {
				httputil.Fail(w, http.StatusBadRequest, err.Error())
				return
			}
			receiptFilename = name
		}
	} else {
		if err := httputil.ReadJSON(r, &req); err != nil {
			httputil.Fail(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	wallet, ok := wallets.Get(req.CryptoType)
	if !ok {
		httputil.Fail(w, http.StatusBadRequest, "Invalid cryptocurrency selected")
		return
	}
	created, err := h.svc.CreateCryptoDeposit(r.Context(), userID, req.Amount, wallet, req.TxID, receiptFilename)
	if err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Deposit request submitted successfully. Please wait for confirmation.",
		"reference":   created.Reference,
		"transaction": created,
	})
}

func (h *Handler) saveReceipt(file multipart.File, header *multipart.FileHeader, userID int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".png"
	}
	if !allowedReceiptExt[ext] {
		return "", errors.New("invalid file type. Allowed: jpg, jpeg, png, gif, pdf")
	}
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%d%s", strings.ReplaceAll(uuid.NewString(), "-", ""), userID, ext)
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, io.LimitReader(file, maxReceiptBytes)); err != nil {
		return "", err
	}
	return name, nil
}

type withdrawRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	WalletAddress string          `json:"wallet_address"`
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request, userID int64) {
	var req withdrawRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	ref, err := h.svc.CreateWithdrawal(r.Context(), userID, req.Amount, req.PaymentMethod, req.WalletAddress)
	if err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Withdrawal request submitted",
		"reference": ref,
	})
}

type transferRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Recipient string          `json:"recipient"`
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request, userID int64) {
	var req transferRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.svc.Transfer(r.Context(), userID, req.Recipient, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ErrRecipientNotFound):
			httputil.Fail(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrSelfTransfer):
			httputil.Fail(w, http.StatusBadRequest, err.Error())
		default:
			httputil.Fail(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	httputil.OK(w, "Transfer completed")
}
