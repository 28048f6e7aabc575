package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	agentdomain "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
	billingdomain "github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/domain"
	in "github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/in"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
	pricingdomain "github.com/Fazlibeqir/DeliverXY-sub000/internal/pricing/domain"
	promodomain "github.com/Fazlibeqir/DeliverXY-sub000/internal/promo/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

const maxBodySize = 1 << 20 // 1MB

// HTTPHandler обрабатывает HTTP запросы контекста доставок
type HTTPHandler struct {
	createUC       in.CreateDeliveryUseCase
	assignUC       in.AssignDeliveryUseCase
	updateStatusUC in.UpdateStatusUseCase
	trackUC        in.TrackDeliveryUseCase
	estimateUC     in.EstimateFareUseCase
	listActiveUC   in.ListActiveUseCase
	log            *logger.Logger
}

// NewHTTPHandler создает новый HTTP handler
func NewHTTPHandler(
	createUC in.CreateDeliveryUseCase,
	assignUC in.AssignDeliveryUseCase,
	updateStatusUC in.UpdateStatusUseCase,
	trackUC in.TrackDeliveryUseCase,
	estimateUC in.EstimateFareUseCase,
	listActiveUC in.ListActiveUseCase,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		createUC:       createUC,
		assignUC:       assignUC,
		updateStatusUC: updateStatusUC,
		trackUC:        trackUC,
		estimateUC:     estimateUC,
		listActiveUC:   listActiveUC,
		log:            log,
	}
}

// RegisterRoutes регистрирует маршруты контекста доставок
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("POST /deliveries", authMiddleware(h.handleCreate))
	mux.HandleFunc("POST /deliveries/estimate", authMiddleware(h.handleEstimate))
	mux.HandleFunc("GET /deliveries/active", authMiddleware(h.handleListActive))
	mux.HandleFunc("POST /deliveries/{id}/accept", authMiddleware(h.handleAccept))
	mux.HandleFunc("POST /deliveries/{id}/assign", authMiddleware(h.handleAssign))
	mux.HandleFunc("PATCH /deliveries/{id}/status", authMiddleware(h.handleUpdateStatus))
	mux.HandleFunc("GET /track/{code}", h.handleTrack)
}

// CreateDeliveryHTTPRequest — HTTP DTO создания доставки
type CreateDeliveryHTTPRequest struct {
	CityID          string   `json:"city_id"`
	PickupLat       *float64 `json:"pickup_lat,omitempty"`
	PickupLng       *float64 `json:"pickup_lng,omitempty"`
	PickupAddress   string   `json:"pickup_address"`
	DropoffLat      *float64 `json:"dropoff_lat,omitempty"`
	DropoffLng      *float64 `json:"dropoff_lng,omitempty"`
	DropoffAddress  string   `json:"dropoff_address"`
	PackageWeightKg *float64 `json:"package_weight_kg,omitempty"`
	PackageNote     string   `json:"package_note,omitempty"`
	PromoCode       string   `json:"promo_code,omitempty"`
	PaymentProvider string   `json:"payment_provider"`
	Tip             string   `json:"tip,omitempty"`
}

func (h *HTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok || userID == "" {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateDeliveryHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	output, err := h.createUC.Execute(ctx, in.CreateDeliveryInput{
		ClientID:        userID,
		CityID:          req.CityID,
		PickupLat:       req.PickupLat,
		PickupLng:       req.PickupLng,
		PickupAddress:   req.PickupAddress,
		DropoffLat:      req.DropoffLat,
		DropoffLng:      req.DropoffLng,
		DropoffAddress:  req.DropoffAddress,
		PackageWeightKg: req.PackageWeightKg,
		PackageNote:     req.PackageNote,
		PromoCode:       req.PromoCode,
		PaymentProvider: req.PaymentProvider,
		Tip:             req.Tip,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, output)
}

// EstimateFareHTTPRequest — HTTP DTO оценки стоимости
type EstimateFareHTTPRequest struct {
	CityID     string  `json:"city_id"`
	PickupLat  float64 `json:"pickup_lat"`
	PickupLng  float64 `json:"pickup_lng"`
	DropoffLat float64 `json:"dropoff_lat"`
	DropoffLng float64 `json:"dropoff_lng"`
	PromoCode  string  `json:"promo_code,omitempty"`
}

func (h *HTTPHandler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok || userID == "" {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req EstimateFareHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	output, err := h.estimateUC.Execute(ctx, in.EstimateFareInput{
		UserID:     userID,
		CityID:     req.CityID,
		PickupLat:  req.PickupLat,
		PickupLng:  req.PickupLng,
		DropoffLat: req.DropoffLat,
		DropoffLng: req.DropoffLng,
		PromoCode:  req.PromoCode,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, output)
}

func (h *HTTPHandler) handleListActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok || userID == "" {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, _ := ctx.Value(ContextKeyUserRole).(string)

	output, err := h.listActiveUC.Execute(ctx, in.ListActiveInput{UserID: userID, Role: role})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, output)
}

func (h *HTTPHandler) handleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agentID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok || agentID == "" {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	output, err := h.assignUC.Execute(ctx, in.AssignDeliveryInput{
		DeliveryID: r.PathValue("id"),
		AgentID:    agentID,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, output)
}

// AssignDeliveryHTTPRequest — HTTP DTO назначения агента администратором
type AssignDeliveryHTTPRequest struct {
	AgentID string `json:"agent_id,omitempty"`
}

// handleAssign назначает доставке конкретного агента, либо ближайшего
// свободного, если агент не указан. Доступно только администратору.
func (h *HTTPHandler) handleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	role, _ := ctx.Value(ContextKeyUserRole).(string)
	if role != "admin" {
		h.respondError(w, http.StatusForbidden, "admin role required")
		return
	}

	// Тело запроса опционально: без agent_id подбирается ближайший
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req AssignDeliveryHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	output, err := h.assignUC.Execute(ctx, in.AssignDeliveryInput{
		DeliveryID: r.PathValue("id"),
		AgentID:    req.AgentID,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, output)
}

// UpdateStatusHTTPRequest — HTTP DTO смены статуса
type UpdateStatusHTTPRequest struct {
	Status       string `json:"status"`
	CancelReason string `json:"cancel_reason,omitempty"`
}

func (h *HTTPHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok || userID == "" {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, _ := ctx.Value(ContextKeyUserRole).(string)

	var req UpdateStatusHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	output, err := h.updateStatusUC.Execute(ctx, in.UpdateStatusInput{
		DeliveryID:   r.PathValue("id"),
		ActorID:      userID,
		ActorRole:    role,
		Status:       req.Status,
		CancelReason: req.CancelReason,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, output)
}

// handleTrack — публичный трекинг по трек-коду, без авторизации
func (h *HTTPHandler) handleTrack(w http.ResponseWriter, r *http.Request) {
	output, err := h.trackUC.Execute(r.Context(), in.TrackDeliveryInput{
		TrackingCode: r.PathValue("code"),
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, output)
}

// decode парсит тело запроса, отвечая 400 при ошибке
func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			h.respondError(w, http.StatusBadRequest, "empty request body")
			return false
		}
		h.respondError(w, http.StatusBadRequest, "invalid request format")
		return false
	}
	return true
}

// handleUseCaseError маппит доменные ошибки на HTTP статусы
func (h *HTTPHandler) handleUseCaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDeliveryNotFound),
		errors.Is(err, agentdomain.ErrAgentNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDeliveryAlreadyAssigned),
		errors.Is(err, domain.ErrDeliveryNotAssignable),
		errors.Is(err, domain.ErrAgentBusy),
		errors.Is(err, agentdomain.ErrNoAgentsAvailable),
		errors.Is(err, domain.ErrInvalidTransition):
		h.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrGeocodeFailed),
		errors.Is(err, geo.ErrInvalidCoordinates),
		errors.Is(err, agentdomain.ErrAgentNotEligible),
		errors.Is(err, promodomain.ErrPromoNotApplicable),
		errors.Is(err, pricingdomain.ErrInvalidRoute):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotDeliveryOwner):
		h.respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, billingdomain.ErrInsufficientBalance),
		errors.Is(err, billingdomain.ErrDailyLimitExceeded),
		errors.Is(err, billingdomain.ErrMonthlyLimitExceeded),
		errors.Is(err, billingdomain.ErrWalletInactive),
		errors.Is(err, billingdomain.ErrProviderNotSupported):
		h.respondError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, pricingdomain.ErrConfigNotFound):
		h.respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.log.Error(logger.Entry{
			Action:  "delivery_request_failed",
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
