package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/application/usecase"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

const maxBodySize = 1 << 20 // 1MB

// HTTPHandler обрабатывает HTTP запросы биллинга
type HTTPHandler struct {
	wallets    *usecase.WalletService
	settlement *usecase.SettlementService
	log        *logger.Logger
}

// NewHTTPHandler создает новый HTTP handler
func NewHTTPHandler(wallets *usecase.WalletService, settlement *usecase.SettlementService, log *logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		wallets:    wallets,
		settlement: settlement,
		log:        log,
	}
}

// RegisterRoutes регистрирует маршруты биллинга
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /wallet", authMiddleware(h.handleBalance))
	mux.HandleFunc("GET /wallet/transactions", authMiddleware(h.handleHistory))
	mux.HandleFunc("POST /wallet/deposit", authMiddleware(h.handleDeposit))
	mux.HandleFunc("POST /wallet/withdraw", authMiddleware(h.handleWithdraw))
	mux.HandleFunc("POST /payments/{delivery_id}/confirm", authMiddleware(h.handleConfirmPayment))
}

func (h *HTTPHandler) handleBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(ContextKeyUserID).(string)
	if !ok || userID == "" {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	wallet, err := h.wallets.Balance(r.Context(), userID)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, wallet)
}

func (h *HTTPHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(ContextKeyUserID).(string)
	if !ok || userID == "" {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	txs, err := h.wallets.History(r.Context(), userID, 50)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

// AmountHTTPRequest — HTTP DTO операций с суммой
type AmountHTTPRequest struct {
	Amount string `json:"amount"`
}

func (h *HTTPHandler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	h.handleAmountOp(w, r, h.wallets.Deposit)
}

func (h *HTTPHandler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	h.handleAmountOp(w, r, h.wallets.Withdraw)
}

func (h *HTTPHandler) handleAmountOp(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Wallet, error),
) {
	ctx := r.Context()
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok || userID == "" {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req AmountHTTPRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			h.respondError(w, http.StatusBadRequest, "empty request body")
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	wallet, err := op(ctx, userID, amount)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, wallet)
}

func (h *HTTPHandler) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	deliveryID := r.PathValue("delivery_id")
	if deliveryID == "" {
		h.respondError(w, http.StatusBadRequest, "delivery_id is required")
		return
	}

	if err := h.settlement.Confirm(r.Context(), deliveryID); err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

// handleUseCaseError маппит доменные ошибки на HTTP статусы
func (h *HTTPHandler) handleUseCaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrPaymentNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrWalletInactive),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrDailyLimitExceeded),
		errors.Is(err, domain.ErrMonthlyLimitExceeded),
		errors.Is(err, domain.ErrPaymentNotSettleable),
		errors.Is(err, domain.ErrProviderNotSupported):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrProviderFailure):
		h.respondError(w, http.StatusBadGateway, err.Error())
	default:
		h.log.Error(logger.Entry{
			Action:  "billing_request_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
