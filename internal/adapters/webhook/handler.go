package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tzander/parkfee-cli/internal/application"
	"github.com/tzander/parkfee-cli/internal/domain"
)

const (
	signatureHeader = "X-Parkfee-Signature"
	maxBodySize     = 1 << 20
)

// Payer is the slice of the settlement facade the webhook needs.
type Payer interface {
	PayTicket(ctx context.Context, barcode domain.Barcode, from, to time.Time, amountMinor int64) (domain.Receipt, application.Outcome)
}

// Handler accepts payment-gateway notifications, verifies their
// HMAC-SHA256 signature and settles the ticket through the facade.
type Handler struct {
	secret []byte
	payer  Payer
	logger *slog.Logger
	router chi.Router
}

// paymentNotification mirrors the PARK_TICKET_PAY field names so the
// gateway configuration can reuse the backend's vocabulary.
type paymentNotification struct {
	Barcode  string `json:"BARCODE"`
	DateFrom string `json:"DATE_FROM"`
	DateTo   string `json:"DATE_TO"`
	Fee      int64  `json:"FEE"`
}

type paymentResponse struct {
	OK            bool   `json:"ok"`
	ReceiptNumber string `json:"receipt_number,omitempty"`
	Error         string `json:"error,omitempty"`
}

func NewHandler(secret []byte, payer Payer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{secret: secret, payer: payer, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Get("/healthz", h.handleHealth)
	r.Post("/webhook/payment", h.handlePayment)
	h.router = r

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.respond(w, http.StatusBadRequest, paymentResponse{Error: "read body"})
		return
	}

	if !h.verifySignature(body, r.Header.Get(signatureHeader)) {
		h.logger.Warn("payment webhook signature mismatch", "remote", r.RemoteAddr)
		h.respond(w, http.StatusUnauthorized, paymentResponse{Error: "invalid signature"})
		return
	}

	var notification paymentNotification
	if err := json.Unmarshal(body, &notification); err != nil {
		h.respond(w, http.StatusBadRequest, paymentResponse{Error: "invalid payload"})
		return
	}
	if notification.Barcode == "" {
		h.respond(w, http.StatusBadRequest, paymentResponse{Error: "BARCODE is required"})
		return
	}

	from, err := domain.ParseBackendTime(notification.DateFrom)
	if err != nil {
		h.respond(w, http.StatusBadRequest, paymentResponse{Error: "invalid DATE_FROM"})
		return
	}
	to, err := domain.ParseBackendTime(notification.DateTo)
	if err != nil {
		h.respond(w, http.StatusBadRequest, paymentResponse{Error: "invalid DATE_TO"})
		return
	}

	receipt, outcome := h.payer.PayTicket(r.Context(), domain.Barcode(notification.Barcode), from, to, notification.Fee)
	if !outcome.OK {
		h.logger.Warn("payment settlement failed",
			"barcode", notification.Barcode, "status", outcome.Status, "message", outcome.Message)
		h.respond(w, http.StatusBadGateway, paymentResponse{Error: outcome.Message})
		return
	}

	h.respond(w, http.StatusOK, paymentResponse{OK: true, ReceiptNumber: receipt.ReceiptNumber})
}

func (h *Handler) verifySignature(body []byte, header string) bool {
	if len(h.secret) == 0 || header == "" {
		return false
	}

	provided, err := hex.DecodeString(header)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	return hmac.Equal(provided, mac.Sum(nil))
}

func (h *Handler) respond(w http.ResponseWriter, status int, payload paymentResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("encode webhook response", "error", err)
	}
}
