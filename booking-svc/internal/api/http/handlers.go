package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"tableside/booking-svc/internal/domain"
	"tableside/booking-svc/internal/service"
)

type Handler struct {
	Orders       service.OrderServiceInterface
	Reservations service.ReservationServiceInterface
	Availability service.AvailabilityServiceInterface
	Clients      service.ClientDirectory
	Reconciler   service.Reconciler
}

func NewHandler(orders service.OrderServiceInterface, reservations service.ReservationServiceInterface, availability service.AvailabilityServiceInterface, clients service.ClientDirectory, reconciler service.Reconciler) *Handler {
	return &Handler{
		Orders:       orders,
		Reservations: reservations,
		Availability: availability,
		Clients:      clients,
		Reconciler:   reconciler,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/orders", h.createOrder).Methods("POST")
	r.HandleFunc("/api/orders", h.getOrders).Methods("GET")
	r.HandleFunc("/api/orders/{id}", h.getOrder).Methods("GET")
	r.HandleFunc("/api/orders/{id}/status", h.updateOrderStatus).Methods("PUT")
	r.HandleFunc("/api/orders/{id}/discount", h.updateOrderDiscount).Methods("PUT")
	r.HandleFunc("/api/orders/{id}/qrcode", h.getOrderQRCode).Methods("GET")

	r.HandleFunc("/api/reservations", h.createReservation).Methods("POST")
	r.HandleFunc("/api/reservations", h.getReservations).Methods("GET")
	r.HandleFunc("/api/reservations/{id}", h.getReservation).Methods("GET")
	r.HandleFunc("/api/reservations/{id}/status", h.updateReservationStatus).Methods("PUT")
	r.HandleFunc("/api/reservations/{id}/table", h.assignTable).Methods("PUT")

	r.HandleFunc("/api/availability", h.getRules).Methods("GET")
	r.HandleFunc("/api/availability/{date}", h.getRule).Methods("GET")
	r.HandleFunc("/api/availability/{date}/block", h.blockDate).Methods("POST")
	r.HandleFunc("/api/availability/{date}/block", h.unblockDate).Methods("DELETE")
	r.HandleFunc("/api/availability/{date}/hours", h.setHours).Methods("PUT")

	r.HandleFunc("/api/clients", h.getClients).Methods("GET")

	r.HandleFunc("/api/admin/reconcile", h.reconcile).Methods("POST")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "booking-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var input service.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	order, err := h.Orders.CreateOrder(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) getOrders(w http.ResponseWriter, r *http.Request) {
	filter := domain.Filter{
		Status: r.URL.Query().Get("status"),
		Key:    r.URL.Query().Get("email"),
	}
	orders, err := h.Orders.ListOrders(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.Orders.FindOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type statusRequest struct {
	Status   domain.Status    `json:"status"`
	Discount *decimal.Decimal `json:"discount"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	order, err := h.Orders.TransitionOrder(r.Context(), id, req.Status, req.Discount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) updateOrderDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Discount decimal.Decimal `json:"discount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	order, err := h.Orders.AdjustDiscount(r.Context(), id, req.Discount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	png, err := h.Orders.OrderQRCode(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *Handler) createReservation(w http.ResponseWriter, r *http.Request) {
	var input service.CreateReservationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reservation, err := h.Reservations.CreateReservation(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservation)
}

func (h *Handler) getReservations(w http.ResponseWriter, r *http.Request) {
	filter := domain.Filter{
		Status: r.URL.Query().Get("status"),
		Key:    r.URL.Query().Get("date"),
	}
	reservations, err := h.Reservations.ListReservations(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

func (h *Handler) getReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	reservation, err := h.Reservations.FindReservation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (h *Handler) updateReservationStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reservation, err := h.Reservations.TransitionReservation(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (h *Handler) assignTable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		TableNumber int `json:"table_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reservation, err := h.Reservations.AssignTable(r.Context(), id, req.TableNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (h *Handler) getRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Availability.ListRules(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (h *Handler) getRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.Availability.Rule(r.Context(), mux.Vars(r)["date"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *Handler) blockDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := h.Availability.BlockDate(r.Context(), mux.Vars(r)["date"], req.Reason); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unblockDate(w http.ResponseWriter, r *http.Request) {
	if err := h.Availability.UnblockDate(r.Context(), mux.Vars(r)["date"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setHours(w http.ResponseWriter, r *http.Request) {
	var input service.HoursInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input.Date = mux.Vars(r)["date"]
	rule, err := h.Availability.SetHours(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *Handler) getClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Clients.Clients(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.Reconciler.Run(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

// writeError maps domain errors to status codes. Rejected bookings carry a
// code clients can switch on.
func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		resp.Code = "validation_failed"
		resp.Field = verr.Field
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		resp.Code = "not_found"
	case errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
		resp.Code = "invalid_transition"
	case errors.Is(err, domain.ErrBlockedDate):
		status = http.StatusConflict
		resp.Code = "date_blocked"
	case errors.Is(err, domain.ErrOutsideOperatingHours):
		status = http.StatusConflict
		resp.Code = "outside_operating_hours"
	case errors.Is(err, domain.ErrCapacityExceeded):
		status = http.StatusConflict
		resp.Code = "capacity_exceeded"
	case errors.Is(err, domain.ErrReconciliationRunning):
		status = http.StatusConflict
		resp.Code = "reconciliation_running"
	case errors.Is(err, domain.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
		resp.Code = "storage_unavailable"
	default:
		log.Printf("Unhandled error: %v", err)
		resp.Error = "internal error"
	}

	writeJSON(w, status, resp)
}
