// Package models defines the data structures used across the application.
// These map to the PostgreSQL schema created by database.Migrate.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the fixed role a user registers with
type Role string

const (
	RoleResident        Role = "resident"
	RoleAdmin           Role = "admin"
	RoleGuard           Role = "guard"
	RoleServiceProvider Role = "service_provider"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleResident, RoleAdmin, RoleGuard, RoleServiceProvider:
		return true
	}
	return false
}

// Services a provider can offer
var ServiceCatalog = []string{"plumber", "electrician", "housekeeping", "cook", "tutor"}

// Actor is the authenticated caller a mutation is performed on behalf of.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// User is a registered community member.
// PasswordHash never leaves the server.
type User struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Role            Role      `json:"role"`
	HouseNumber     string    `json:"houseNumber,omitempty"`
	ServicesOffered []string  `json:"services_offered,omitempty"`
	Availability    bool      `json:"availability"`
	AssignedHouseNo string    `json:"assignedHouseNo,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Offers reports whether the user lists service among services_offered
func (u *User) Offers(service string) bool {
	for _, s := range u.ServicesOffered {
		if s == service {
			return true
		}
	}
	return false
}

// Ref returns the populated form of u
func (u *User) Ref() *UserRef {
	return &UserRef{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		HouseNumber:     u.HouseNumber,
		ServicesOffered: u.ServicesOffered,
	}
}

// UserRef is the subset of a user embedded in other resources at read time.
type UserRef struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Role            Role      `json:"role,omitempty"`
	HouseNumber     string    `json:"houseNumber,omitempty"`
	ServicesOffered []string  `json:"services_offered,omitempty"`
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

type ComplaintStatus string

const (
	ComplaintOpen       ComplaintStatus = "open"
	ComplaintInProgress ComplaintStatus = "in_progress"
	ComplaintResolved   ComplaintStatus = "resolved"
	ComplaintCancelled  ComplaintStatus = "cancelled"
)

// Complaint is an issue raised by a resident
type Complaint struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	User      *UserRef        `json:"user,omitempty"`
	Issue     string          `json:"issue"`
	Urgency   Urgency         `json:"urgency"`
	Status    ComplaintStatus `json:"status"`
	Image     string          `json:"image,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type GatePassStatus string

const (
	GatePassPending  GatePassStatus = "pending"
	GatePassApproved GatePassStatus = "approved"
	GatePassRejected GatePassStatus = "rejected"
)

// GatePass is a visitor entry request raised by a resident
type GatePass struct {
	ID            uuid.UUID      `json:"id"`
	ResidentID    uuid.UUID      `json:"residentId"`
	Resident      *UserRef       `json:"resident,omitempty"`
	VisitorName   string         `json:"visitorName"`
	VisitPurpose  string         `json:"visitPurpose"`
	VisitTime     time.Time      `json:"visitTime"`
	GuardComments string         `json:"guardComments,omitempty"`
	Status        GatePassStatus `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingAccepted BookingStatus = "accepted"
	BookingRejected BookingStatus = "rejected"
)

// Booking is a resident's request for a service provider
type Booking struct {
	ID                uuid.UUID     `json:"id"`
	ResidentID        uuid.UUID     `json:"resident_id"`
	ServiceProviderID uuid.UUID     `json:"serviceprovider_id"`
	Resident          *UserRef      `json:"resident,omitempty"`
	Provider          *UserRef      `json:"serviceprovider,omitempty"`
	Service           string        `json:"service"`
	DateTime          time.Time     `json:"dateTime"`
	Status            BookingStatus `json:"status"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// ProviderInfo summarises a provider's profile and booking load
type ProviderInfo struct {
	Provider *User                 `json:"provider"`
	Bookings map[BookingStatus]int `json:"bookings"`
	Total    int                   `json:"total"`
}

type BroadcastType string

const (
	BroadcastInfo    BroadcastType = "info"
	BroadcastWarning BroadcastType = "warning"
	BroadcastError   BroadcastType = "error"
)

type BroadcastCategory string

const (
	CategoryPost  BroadcastCategory = "post"
	CategoryEvent BroadcastCategory = "event"
)

// Broadcast is an admin announcement
type Broadcast struct {
	ID        uuid.UUID         `json:"id"`
	AdminID   uuid.UUID         `json:"adminId"`
	Admin     *UserRef          `json:"admin,omitempty"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Type      BroadcastType     `json:"type"`
	Category  BroadcastCategory `json:"category"`
	Image     string            `json:"image,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// PollOption is one choice with its running tally
type PollOption struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// PollVote records which option a user picked
type PollVote struct {
	User    uuid.UUID `json:"user"`
	Option  string    `json:"option"`
	VotedAt time.Time `json:"votedAt"`
}

// Poll is a question put to residents and guards
type Poll struct {
	ID        uuid.UUID    `json:"id"`
	Question  string       `json:"question"`
	Options   []PollOption `json:"options"`
	Votes     []PollVote   `json:"votes"`
	CreatedBy uuid.UUID    `json:"createdBy"`
	ExpiresAt time.Time    `json:"expiresAt"`
	CreatedAt time.Time    `json:"createdAt"`
}

// HasVoted reports whether userID already has a vote entry
func (p *Poll) HasVoted(userID uuid.UUID) bool {
	for _, v := range p.Votes {
		if v.User == userID {
			return true
		}
	}
	return false
}

// OptionIndex returns the index of the option with the given text, or -1.
func (p *Poll) OptionIndex(text string) int {
	for i, o := range p.Options {
		if o.Text == text {
			return i
		}
	}
	return -1
}

// TotalVotes sums the option counters
func (p *Poll) TotalVotes() int {
	total := 0
	for _, o := range p.Options {
		total += o.Votes
	}
	return total
}

// Expired reports whether voting has closed at now
func (p *Poll) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// PollResult is one option in a results summary
type PollResult struct {
	Text       string `json:"text"`
	Votes      int    `json:"votes"`
	Percentage string `json:"percentage"`
}

// Results returns per-option counts with percentages to two decimals.
func (p *Poll) Results() []PollResult {
	total := p.TotalVotes()
	results := make([]PollResult, 0, len(p.Options))
	for _, o := range p.Options {
		pct := "0.00"
		if total > 0 {
			pct = fmt.Sprintf("%.2f", float64(o.Votes)/float64(total)*100)
		}
		results = append(results, PollResult{Text: o.Text, Votes: o.Votes, Percentage: pct})
	}
	return results
}

// PollAnalytics is the results summary of one poll
type PollAnalytics struct {
	PollID     uuid.UUID    `json:"pollId"`
	Question   string       `json:"question"`
	TotalVotes int          `json:"totalVotes"`
	Expired    bool         `json:"expired"`
	Results    []PollResult `json:"results"`
}

type TaskStatus string

const (
	TaskAssigned   TaskStatus = "assigned"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskAchieved   TaskStatus = "achieved"
)

// GuardTask is work an admin assigns to a guard
type GuardTask struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssignedTo  uuid.UUID  `json:"assignedTo"`
	Assignee    *UserRef   `json:"assignee,omitempty"`
	CreatedBy   uuid.UUID  `json:"createdBy"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type SOSType string

const (
	SOSMedical  SOSType = "medical"
	SOSFire     SOSType = "fire"
	SOSSecurity SOSType = "security"
)

// SOSAlert is an emergency raised by any user
type SOSAlert struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	Reporter    *UserRef   `json:"reporter,omitempty"`
	Type        SOSType    `json:"type"`
	IsResolved  bool       `json:"isResolved"`
	RespondedBy *uuid.UUID `json:"respondedBy,omitempty"`
	Responder   *UserRef   `json:"responder,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// HealthStatus represents the server health check response
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime,omitempty"`
	Database string `json:"database,omitempty"`
	Redis    string `json:"redis,omitempty"`
}
