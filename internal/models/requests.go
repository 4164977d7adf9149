package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/societyhub/community-server/internal/apperr"
)

// Validator is implemented by every request schema. Handlers call it before
// any business logic runs.
type Validator interface {
	Validate() error
}

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	Name            string   `json:"name" validate:"required,min=3"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=8"`
	Role            Role     `json:"role" validate:"required,oneof=resident admin guard service_provider"`
	HouseNumber     string   `json:"houseNumber"`
	ServicesOffered []string `json:"services_offered" validate:"omitempty,unique,dive,service"`
	Availability    bool     `json:"availability"`
	AssignedHouseNo string   `json:"assignedHouseNo"`
	Phone           string   `json:"phone"`
}

func (r *SignupRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	switch r.Role {
	case RoleResident:
		if strings.TrimSpace(r.HouseNumber) == "" {
			return apperr.ValidationFields("houseNumber is required for residents",
				map[string]string{"houseNumber": "houseNumber is required for residents"})
		}
	case RoleServiceProvider:
		if len(r.ServicesOffered) == 0 {
			return apperr.ValidationFields("services_offered is required for service providers",
				map[string]string{"services_offered": "services_offered is required for service providers"})
		}
	}
	return nil
}

// SigninRequest is the body of POST /auth/signin
type SigninRequest struct {
	NameOrEmail string `json:"nameoremail" validate:"required"`
	Password    string `json:"password" validate:"required"`
	Role        Role   `json:"role" validate:"required,oneof=resident admin guard service_provider"`
}

func (r *SigninRequest) Validate() error { return validateStruct(r) }

// UpdateUserRequest carries the fields a user (or an admin) may change.
// Nil means "leave as is".
type UpdateUserRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=3"`
	Email        *string `json:"email" validate:"omitempty,email"`
	HouseNumber  *string `json:"houseNumber" validate:"omitempty,min=1"`
	Phone        *string `json:"phone" validate:"omitempty,max=20"`
	Availability *bool   `json:"availability"`
}

func (r *UpdateUserRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.Name == nil && r.Email == nil && r.HouseNumber == nil && r.Phone == nil && r.Availability == nil {
		return apperr.Validation("No fields to update")
	}
	return nil
}

// RaiseComplaintRequest is decoded from the multipart form of
// POST /complaints/raise-complaint.
type RaiseComplaintRequest struct {
	Issue   string  `json:"issue" validate:"required"`
	Urgency Urgency `json:"urgency" validate:"required,oneof=low medium high"`
}

func (r *RaiseComplaintRequest) Validate() error { return validateStruct(r) }

// UpdateComplaintRequest is the body of POST /complaints/updateComplaint/{id}
type UpdateComplaintRequest struct {
	Status ComplaintStatus `json:"status" validate:"required,oneof=in_progress resolved cancelled"`
}

func (r *UpdateComplaintRequest) Validate() error { return validateStruct(r) }

// GatePassRequest is the body of POST /gatepass/requestGatepass
type GatePassRequest struct {
	VisitorName   string    `json:"visitorName" validate:"required"`
	VisitPurpose  string    `json:"visitPurpose" validate:"required"`
	VisitTime     time.Time `json:"visitTime" validate:"required"`
	GuardComments string    `json:"guardComments"`
}

func (r *GatePassRequest) Validate() error { return validateStruct(r) }

// UpdateGatePassRequest is the body of POST /gatepass/updateGatepassStatus/{id}
type UpdateGatePassRequest struct {
	Status        GatePassStatus `json:"status" validate:"required,oneof=approved rejected"`
	GuardComments string         `json:"guardComments" validate:"max=500"`
}

func (r *UpdateGatePassRequest) Validate() error { return validateStruct(r) }

// BookServiceRequest is the body of POST /service-booking/book-service
type BookServiceRequest struct {
	ServiceProviderID uuid.UUID `json:"serviceprovider_id" validate:"required"`
	Service           string    `json:"service" validate:"required,service"`
	DateTime          time.Time `json:"dateTime" validate:"required"`
}

func (r *BookServiceRequest) Validate() error { return validateStruct(r) }

// UpdateBookingRequest is the body of POST /service-booking/status/{id}
type UpdateBookingRequest struct {
	Status BookingStatus `json:"status" validate:"required,oneof=accepted rejected"`
}

func (r *UpdateBookingRequest) Validate() error { return validateStruct(r) }

// BroadcastRequest is decoded from the multipart form of
// POST /broadcast/createBroadcast.
type BroadcastRequest struct {
	Title    string            `json:"title" validate:"required"`
	Message  string            `json:"message" validate:"required"`
	Type     BroadcastType     `json:"type" validate:"required,oneof=info warning error"`
	Category BroadcastCategory `json:"category" validate:"required,oneof=post event"`
}

func (r *BroadcastRequest) Validate() error { return validateStruct(r) }

// UpdateBroadcastRequest is a partial update; empty fields are left unchanged.
type UpdateBroadcastRequest struct {
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Type     BroadcastType     `json:"type" validate:"omitempty,oneof=info warning error"`
	Category BroadcastCategory `json:"category" validate:"omitempty,oneof=post event"`
}

func (r *UpdateBroadcastRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.Title == "" && r.Message == "" && r.Type == "" && r.Category == "" {
		return apperr.Validation("No fields to update")
	}
	return nil
}

// CreatePollRequest is the body of POST /poll/createpoll
type CreatePollRequest struct {
	Question  string    `json:"question" validate:"required"`
	Options   []string  `json:"options" validate:"required,min=2,unique,dive,required"`
	ExpiresAt time.Time `json:"expiresAt" validate:"required"`
}

// Validate trims the question and options first, so duplicates and blank
// options are judged on the text that gets stored.
func (r *CreatePollRequest) Validate() error {
	r.Question = strings.TrimSpace(r.Question)
	for i, opt := range r.Options {
		r.Options[i] = strings.TrimSpace(opt)
	}
	return validateStruct(r)
}

// VotePollRequest is the body of POST /poll/votepoll/{id}
type VotePollRequest struct {
	SelectedOption string `json:"selectedOption" validate:"required"`
}

func (r *VotePollRequest) Validate() error { return validateStruct(r) }

// CreateTaskRequest is the body of POST /guardtask/create
type CreateTaskRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	AssignedTo  uuid.UUID `json:"assignedTo" validate:"required"`
}

func (r *CreateTaskRequest) Validate() error { return validateStruct(r) }

// UpdateTaskRequest is the body of POST /guardtask/update/{id}
type UpdateTaskRequest struct {
	Status TaskStatus `json:"status" validate:"required,oneof=in_progress completed"`
}

func (r *UpdateTaskRequest) Validate() error { return validateStruct(r) }

// CreateSOSRequest is the body of POST /sos/create
type CreateSOSRequest struct {
	Type SOSType `json:"type" validate:"required,oneof=medical fire security"`
}

func (r *CreateSOSRequest) Validate() error { return validateStruct(r) }
