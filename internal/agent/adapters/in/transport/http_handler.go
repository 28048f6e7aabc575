package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	in "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/application/ports/in"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

const maxBodySize = 1 << 20 // 1MB

// HTTPHandler обрабатывает HTTP запросы контекста курьеров
type HTTPHandler struct {
	goOnlineUC       in.GoOnlineUseCase
	goOfflineUC      in.GoOfflineUseCase
	updateLocationUC in.UpdateLocationUseCase
	log              *logger.Logger
}

// NewHTTPHandler создает новый HTTP handler
func NewHTTPHandler(
	goOnlineUC in.GoOnlineUseCase,
	goOfflineUC in.GoOfflineUseCase,
	updateLocationUC in.UpdateLocationUseCase,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		goOnlineUC:       goOnlineUC,
		goOfflineUC:      goOfflineUC,
		updateLocationUC: updateLocationUC,
		log:              log,
	}
}

// RegisterRoutes регистрирует маршруты контекста курьеров
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("POST /agents/online", authMiddleware(h.handleGoOnline))
	mux.HandleFunc("POST /agents/offline", authMiddleware(h.handleGoOffline))
	mux.HandleFunc("POST /agents/location", authMiddleware(h.handleUpdateLocation))
}

// GoOnlineHTTPRequest — HTTP DTO перехода в онлайн
type GoOnlineHTTPRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *HTTPHandler) handleGoOnline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agentID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok || agentID == "" {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req GoOnlineHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	output, err := h.goOnlineUC.Execute(ctx, in.GoOnlineInput{
		AgentID:   agentID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, output)
}

func (h *HTTPHandler) handleGoOffline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agentID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok || agentID == "" {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	output, err := h.goOfflineUC.Execute(ctx, in.GoOfflineInput{AgentID: agentID})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, output)
}

// UpdateLocationHTTPRequest — HTTP DTO обновления позиции
type UpdateLocationHTTPRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *HTTPHandler) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agentID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok || agentID == "" {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateLocationHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	output, err := h.updateLocationUC.Execute(ctx, in.UpdateLocationInput{
		AgentID:   agentID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
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
	case errors.Is(err, domain.ErrAgentNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidCoordinates),
		errors.Is(err, domain.ErrAgentNotEligible):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrLocationUpdateTooFrequent):
		h.respondError(w, http.StatusTooManyRequests, err.Error())
	default:
		h.log.Error(logger.Entry{
			Action:  "agent_request_failed",
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
