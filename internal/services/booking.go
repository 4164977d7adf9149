package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/database"
	"github.com/societyhub/community-server/internal/models"
	"github.com/societyhub/community-server/internal/workflow"
)

const bookingColumns = `id, resident_id, serviceprovider_id, service, date_time, status, created_at, updated_at`

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.ID, &b.ResidentID, &b.ServiceProviderID, &b.Service, &b.DateTime, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// BookingService handles resident bookings of service providers
type BookingService struct {
	clock
	db     database.DB
	users  *UserService
	logger *zap.SugaredLogger
}

// NewBookingService creates a new booking service
func NewBookingService(db database.DB, users *UserService, logger *zap.SugaredLogger) *BookingService {
	return &BookingService{db: db, users: users, logger: logger}
}

// Book creates a pending booking after checking the provider offers the service.
func (s *BookingService) Book(ctx context.Context, actor models.Actor, req *models.BookServiceRequest) (*models.Booking, error) {
	provider, err := s.users.Get(ctx, req.ServiceProviderID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("Service provider not found")
		}
		return nil, err
	}
	if provider.Role != models.RoleServiceProvider {
		return nil, apperr.Validation("Selected user is not a service provider")
	}
	if !provider.Offers(req.Service) {
		return nil, apperr.Validation("This provider doesn't offer the selected service")
	}

	now := s.Now()
	b := &models.Booking{
		ID:                uuid.New(),
		ResidentID:        actor.UserID,
		ServiceProviderID: provider.ID,
		Service:           req.Service,
		DateTime:          req.DateTime,
		Status:            models.BookingPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	query := `
		INSERT INTO service_bookings (id, resident_id, serviceprovider_id, service, date_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.Exec(ctx, query, b.ID, b.ResidentID, b.ServiceProviderID, b.Service, b.DateTime, b.Status, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	s.logger.Infow("Service booked", "booking_id", b.ID, "provider_id", b.ServiceProviderID, "service", b.Service)
	return b, nil
}

// ListForResident returns a resident's bookings with the provider populated
func (s *BookingService) ListForResident(ctx context.Context, residentID uuid.UUID) ([]models.Booking, error) {
	return s.listPopulated(ctx, false, true,
		`SELECT `+bookingColumns+` FROM service_bookings WHERE resident_id = $1 ORDER BY date_time DESC`, residentID)
}

// ListForProvider returns a provider's bookings with the resident populated
func (s *BookingService) ListForProvider(ctx context.Context, providerID uuid.UUID) ([]models.Booking, error) {
	return s.listPopulated(ctx, true, false,
		`SELECT `+bookingColumns+` FROM service_bookings WHERE serviceprovider_id = $1 ORDER BY date_time DESC`, providerID)
}

// ListAll returns every booking with both parties populated
func (s *BookingService) ListAll(ctx context.Context) ([]models.Booking, error) {
	return s.listPopulated(ctx, true, true, `SELECT `+bookingColumns+` FROM service_bookings ORDER BY date_time DESC`)
}

func (s *BookingService) listPopulated(ctx context.Context, withResident, withProvider bool, query string, args ...any) ([]models.Booking, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	var ids []uuid.UUID
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
		if withResident {
			ids = append(ids, b.ResidentID)
		}
		if withProvider {
			ids = append(ids, b.ServiceProviderID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	refs, err := loadUserRefs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		if withResident {
			bookings[i].Resident = refs[bookings[i].ResidentID]
		}
		if withProvider {
			bookings[i].Provider = refs[bookings[i].ServiceProviderID]
		}
	}
	return bookings, nil
}

// Get returns one booking
func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	b, err := scanBooking(s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM service_bookings WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "Booking not found", "get booking")
	}
	return b, nil
}

// UpdateStatus lets the booked provider accept or reject a pending booking
func (s *BookingService) UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, to models.BookingStatus) (*models.Booking, error) {
	next, err := applyTransition(ctx, "booking",
		func(ctx context.Context) (models.Booking, error) {
			b, err := s.Get(ctx, id)
			if err != nil {
				return models.Booking{}, err
			}
			return *b, nil
		},
		func(cur models.Booking) (models.Booking, error) {
			return workflow.TransitionBooking(cur, to, actor, s.Now())
		},
		func(ctx context.Context, cur, next models.Booking) (bool, error) {
			tag, err := s.db.Exec(ctx,
				`UPDATE service_bookings SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
				next.ID, next.Status, next.UpdatedAt, cur.Status)
			if err != nil {
				return false, fmt.Errorf("update booking: %w", err)
			}
			return tag.RowsAffected() == 1, nil
		},
	)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Booking status updated", "booking_id", id, "status", next.Status)
	return &next, nil
}

// ProviderInfo returns the provider's profile with booking counts per status.
func (s *BookingService) ProviderInfo(ctx context.Context, providerID uuid.UUID) (*models.ProviderInfo, error) {
	provider, err := s.users.Get(ctx, providerID)
	if err != nil {
		return nil, err
	}

	info := &models.ProviderInfo{
		Provider: provider,
		Bookings: map[models.BookingStatus]int{
			models.BookingPending:  0,
			models.BookingAccepted: 0,
			models.BookingRejected: 0,
		},
	}

	rows, err := s.db.Query(ctx,
		`SELECT status, COUNT(*) FROM service_bookings WHERE serviceprovider_id = $1 GROUP BY status`, providerID)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status models.BookingStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan booking count: %w", err)
		}
		info.Bookings[status] = n
		info.Total += n
	}
	return info, rows.Err()
}
