package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/societyhub/community-server/internal/models"
)

// UserService is implemented by *services.UserService
type UserService interface {
	Register(ctx context.Context, req *models.SignupRequest) (*models.User, error)
	Authenticate(ctx context.Context, req *models.SigninRequest) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, role models.Role) ([]models.User, error)
	Update(ctx context.Context, actor models.Actor, id uuid.UUID, req *models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ComplaintService is implemented by *services.ComplaintService
type ComplaintService interface {
	Raise(ctx context.Context, actor models.Actor, req *models.RaiseComplaintRequest, image string) (*models.Complaint, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Complaint, error)
	ListAll(ctx context.Context) ([]models.Complaint, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, to models.ComplaintStatus) (*models.Complaint, error)
	Delete(ctx context.Context, actor models.Actor, id uuid.UUID) (string, error)
}

// GatePassService is implemented by *services.GatePassService
type GatePassService interface {
	Request(ctx context.Context, actor models.Actor, req *models.GatePassRequest) (*models.GatePass, error)
	ListAll(ctx context.Context) ([]models.GatePass, error)
	ListPending(ctx context.Context) ([]models.GatePass, error)
	ListMine(ctx context.Context, residentID uuid.UUID) ([]models.GatePass, error)
	VisitorLog(ctx context.Context, day time.Time) ([]models.GatePass, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, req *models.UpdateGatePassRequest) (*models.GatePass, error)
}

// BookingService is implemented by *services.BookingService
type BookingService interface {
	Book(ctx context.Context, actor models.Actor, req *models.BookServiceRequest) (*models.Booking, error)
	ListForResident(ctx context.Context, residentID uuid.UUID) ([]models.Booking, error)
	ListForProvider(ctx context.Context, providerID uuid.UUID) ([]models.Booking, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, to models.BookingStatus) (*models.Booking, error)
	ProviderInfo(ctx context.Context, providerID uuid.UUID) (*models.ProviderInfo, error)
}

// BroadcastService is implemented by *services.BroadcastService
type BroadcastService interface {
	Create(ctx context.Context, actor models.Actor, req *models.BroadcastRequest, image string) (*models.Broadcast, error)
	List(ctx context.Context) ([]models.Broadcast, error)
	Update(ctx context.Context, id uuid.UUID, req *models.UpdateBroadcastRequest) (*models.Broadcast, error)
	Delete(ctx context.Context, id uuid.UUID) (string, error)
}

// PollService is implemented by *services.PollService
type PollService interface {
	Create(ctx context.Context, actor models.Actor, req *models.CreatePollRequest) (*models.Poll, error)
	List(ctx context.Context) ([]models.Poll, error)
	ListActive(ctx context.Context) ([]models.Poll, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Poll, error)
	Analytics(ctx context.Context, id uuid.UUID) (*models.PollAnalytics, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Vote(ctx context.Context, actor models.Actor, id uuid.UUID, option string) (*models.Poll, error)
}

// TaskService is implemented by *services.TaskService
type TaskService interface {
	Create(ctx context.Context, actor models.Actor, req *models.CreateTaskRequest) (*models.GuardTask, error)
	ListMine(ctx context.Context, guardID uuid.UUID) ([]models.GuardTask, error)
	ListUnachieved(ctx context.Context) ([]models.GuardTask, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, to models.TaskStatus) (*models.GuardTask, error)
	Achieve(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.GuardTask, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SOSService is implemented by *services.SOSService
type SOSService interface {
	Create(ctx context.Context, actor models.Actor, req *models.CreateSOSRequest) (*models.SOSAlert, error)
	List(ctx context.Context) ([]models.SOSAlert, error)
	Respond(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.SOSAlert, error)
}
