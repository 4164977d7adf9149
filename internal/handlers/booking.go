package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/models"
)

// BookingHandler handles service booking endpoints
type BookingHandler struct {
	bookings BookingService
	users    UserService
	logger   *zap.SugaredLogger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings BookingService, users UserService, logger *zap.SugaredLogger) *BookingHandler {
	return &BookingHandler{bookings: bookings, users: users, logger: logger}
}

// Book handles POST /api/v1/service-booking/book-service
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req models.BookServiceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, h.logger, err, "book service")
		return
	}

	booking, err := h.bookings.Book(r.Context(), actorFrom(r), &req)
	if err != nil {
		respondErr(w, h.logger, err, "book service")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Service booked successfully",
		"booking": booking,
	})
}

// ResidentBookings handles GET /api/v1/service-booking/resident-booking
func (h *BookingHandler) ResidentBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListForResident(r.Context(), actorFrom(r).UserID)
	if err != nil {
		respondErr(w, h.logger, err, "list resident bookings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"bookings": bookings})
}

// ProviderBookings handles GET /api/v1/service-booking/provider-booking
func (h *BookingHandler) ProviderBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListForProvider(r.Context(), actorFrom(r).UserID)
	if err != nil {
		respondErr(w, h.logger, err, "list provider bookings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"bookings": bookings})
}

// AllBookings handles GET /api/v1/service-booking/allbookings
func (h *BookingHandler) AllBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListAll(r.Context())
	if err != nil {
		respondErr(w, h.logger, err, "list bookings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"bookings": bookings})
}

// Providers handles GET /api/v1/service-booking/all-providers
func (h *BookingHandler) Providers(w http.ResponseWriter, r *http.Request) {
	providers, err := h.users.List(r.Context(), models.RoleServiceProvider)
	if err != nil {
		respondErr(w, h.logger, err, "list providers")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"providers": providers})
}

// ProviderInfo handles GET /api/v1/service-booking/provider-info
func (h *BookingHandler) ProviderInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.bookings.ProviderInfo(r.Context(), actorFrom(r).UserID)
	if err != nil {
		respondErr(w, h.logger, err, "provider info")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"info": info})
}

// UpdateStatus handles POST /api/v1/service-booking/status/{id}
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "update booking")
		return
	}

	var req models.UpdateBookingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, h.logger, err, "update booking")
		return
	}

	booking, err := h.bookings.UpdateStatus(r.Context(), actorFrom(r), id, req.Status)
	if err != nil {
		respondErr(w, h.logger, err, "update booking")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Booking " + string(booking.Status),
		"booking": booking,
	})
}
