package workflow

import (
	"time"

	"github.com/societyhub/community-server/internal/models"
)

// BookingTable: pending -> accepted | rejected, by the booked provider only.
var BookingTable = Table[models.BookingStatus]{
	Resource: "booking",
	States:   []models.BookingStatus{models.BookingPending, models.BookingAccepted, models.BookingRejected},
	Terminal: map[models.BookingStatus]string{
		models.BookingAccepted: "Booking already accepted",
		models.BookingRejected: "Booking already rejected",
	},
	Edges: map[models.BookingStatus]map[models.BookingStatus]Permit{
		models.BookingPending: {
			models.BookingAccepted: {
				Roles:     []models.Role{models.RoleServiceProvider},
				OwnerOnly: true,
				Denied:    "Only the booked service provider can accept this booking",
			},
			models.BookingRejected: {
				Roles:     []models.Role{models.RoleServiceProvider},
				OwnerOnly: true,
				Denied:    "Only the booked service provider can reject this booking",
			},
		},
	},
}

// TransitionBooking applies the provider's answer to a booking request.
func TransitionBooking(b models.Booking, to models.BookingStatus, actor models.Actor, now time.Time) (models.Booking, error) {
	if err := BookingTable.Check(b.Status, to, actor, b.ServiceProviderID); err != nil {
		return b, err
	}
	b.Status = to
	b.UpdatedAt = now
	return b, nil
}
