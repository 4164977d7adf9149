package handlers

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/auth"
	"github.com/societyhub/community-server/internal/models"
	"github.com/societyhub/community-server/internal/workflow"
)

// In-memory stand-ins for the services. Status changes go through the real
// workflow package so handler tests see the same decisions as production.

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUsers) add(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUsers) Register(_ context.Context, req *models.SignupRequest) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email := strings.ToLower(req.Email)
	for _, u := range f.users {
		if u.Email == email {
			return nil, apperr.Conflict("User already exists")
		}
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID: uuid.New(), Name: req.Name, Email: email, PasswordHash: hash, Role: req.Role,
		HouseNumber: req.HouseNumber, ServicesOffered: req.ServicesOffered,
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, req *models.SigninRequest) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email != strings.ToLower(req.NameOrEmail) && u.Name != req.NameOrEmail {
			continue
		}
		if u.Role != req.Role {
			return nil, apperr.Auth("Unauthorized role access")
		}
		ok, err := auth.CheckPassword(u.PasswordHash, req.Password)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Auth("Invalid credentials")
		}
		return u, nil
	}
	return nil, apperr.Auth("User does not exist")
}

func (f *fakeUsers) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

func (f *fakeUsers) List(_ context.Context, role models.Role) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, u := range f.users {
		if role == "" || u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Update(ctx context.Context, actor models.Actor, id uuid.UUID, req *models.UpdateUserRequest) (*models.User, error) {
	if actor.Role != models.RoleAdmin && actor.UserID != id {
		return nil, apperr.Forbidden("You can only update your own profile")
	}
	u, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	return u, nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return apperr.NotFound("User not found")
	}
	delete(f.users, id)
	return nil
}

type fakeComplaints struct {
	mu         sync.Mutex
	complaints map[uuid.UUID]*models.Complaint
	raiseErr   error
}

func newFakeComplaints() *fakeComplaints {
	return &fakeComplaints{complaints: make(map[uuid.UUID]*models.Complaint)}
}

func (f *fakeComplaints) Raise(_ context.Context, actor models.Actor, req *models.RaiseComplaintRequest, image string) (*models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.raiseErr != nil {
		return nil, f.raiseErr
	}
	c := &models.Complaint{ID: uuid.New(), UserID: actor.UserID, Issue: req.Issue, Urgency: req.Urgency,
		Status: models.ComplaintOpen, Image: image}
	f.complaints[c.ID] = c
	return c, nil
}

func (f *fakeComplaints) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Complaint{}
	for _, c := range f.complaints {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeComplaints) ListAll(ctx context.Context) ([]models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Complaint{}
	for _, c := range f.complaints {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeComplaints) UpdateStatus(_ context.Context, actor models.Actor, id uuid.UUID, to models.ComplaintStatus) (*models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.complaints[id]
	if !ok {
		return nil, apperr.NotFound("Complaint not found")
	}
	next, err := workflow.TransitionComplaint(*c, to, actor, time.Now())
	if err != nil {
		return nil, err
	}
	*c = next
	return &next, nil
}

func (f *fakeComplaints) Delete(_ context.Context, actor models.Actor, id uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.complaints[id]
	if !ok {
		return "", apperr.NotFound("Complaint not found")
	}
	if actor.Role != models.RoleAdmin && actor.UserID != c.UserID {
		return "", apperr.Forbidden("You can only delete your own complaints")
	}
	delete(f.complaints, id)
	return c.Image, nil
}

type fakeGatePasses struct {
	mu     sync.Mutex
	passes map[uuid.UUID]*models.GatePass
}

func newFakeGatePasses() *fakeGatePasses {
	return &fakeGatePasses{passes: make(map[uuid.UUID]*models.GatePass)}
}

func (f *fakeGatePasses) Request(_ context.Context, actor models.Actor, req *models.GatePassRequest) (*models.GatePass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gp := &models.GatePass{ID: uuid.New(), ResidentID: actor.UserID, VisitorName: req.VisitorName,
		VisitPurpose: req.VisitPurpose, VisitTime: req.VisitTime, Status: models.GatePassPending}
	f.passes[gp.ID] = gp
	return gp, nil
}

func (f *fakeGatePasses) all(keep func(*models.GatePass) bool) []models.GatePass {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.GatePass{}
	for _, gp := range f.passes {
		if keep(gp) {
			out = append(out, *gp)
		}
	}
	return out
}

func (f *fakeGatePasses) ListAll(context.Context) ([]models.GatePass, error) {
	return f.all(func(*models.GatePass) bool { return true }), nil
}

func (f *fakeGatePasses) ListPending(context.Context) ([]models.GatePass, error) {
	return f.all(func(gp *models.GatePass) bool { return gp.Status == models.GatePassPending }), nil
}

func (f *fakeGatePasses) ListMine(_ context.Context, residentID uuid.UUID) ([]models.GatePass, error) {
	return f.all(func(gp *models.GatePass) bool { return gp.ResidentID == residentID }), nil
}

func (f *fakeGatePasses) VisitorLog(_ context.Context, day time.Time) ([]models.GatePass, error) {
	y, m, d := day.Date()
	return f.all(func(gp *models.GatePass) bool {
		gy, gm, gd := gp.VisitTime.In(day.Location()).Date()
		return gy == y && gm == m && gd == d
	}), nil
}

func (f *fakeGatePasses) UpdateStatus(_ context.Context, actor models.Actor, id uuid.UUID, req *models.UpdateGatePassRequest) (*models.GatePass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gp, ok := f.passes[id]
	if !ok {
		return nil, apperr.NotFound("Gate pass not found")
	}
	next, err := workflow.TransitionGatePass(*gp, req.Status, req.GuardComments, actor, time.Now())
	if err != nil {
		return nil, err
	}
	*gp = next
	return &next, nil
}

type fakeBookings struct {
	mu       sync.Mutex
	users    *fakeUsers
	bookings map[uuid.UUID]*models.Booking
}

func newFakeBookings(users *fakeUsers) *fakeBookings {
	return &fakeBookings{users: users, bookings: make(map[uuid.UUID]*models.Booking)}
}

func (f *fakeBookings) Book(ctx context.Context, actor models.Actor, req *models.BookServiceRequest) (*models.Booking, error) {
	provider, err := f.users.Get(ctx, req.ServiceProviderID)
	if err != nil || provider.Role != models.RoleServiceProvider {
		return nil, apperr.NotFound("Service provider not found")
	}
	if !provider.Offers(req.Service) {
		return nil, apperr.Validation("This provider doesn't offer the selected service")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b := &models.Booking{ID: uuid.New(), ResidentID: actor.UserID, ServiceProviderID: provider.ID,
		Service: req.Service, DateTime: req.DateTime, Status: models.BookingPending}
	f.bookings[b.ID] = b
	return b, nil
}

func (f *fakeBookings) list(keep func(*models.Booking) bool) []models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Booking{}
	for _, b := range f.bookings {
		if keep(b) {
			out = append(out, *b)
		}
	}
	return out
}

func (f *fakeBookings) ListForResident(_ context.Context, id uuid.UUID) ([]models.Booking, error) {
	return f.list(func(b *models.Booking) bool { return b.ResidentID == id }), nil
}

func (f *fakeBookings) ListForProvider(_ context.Context, id uuid.UUID) ([]models.Booking, error) {
	return f.list(func(b *models.Booking) bool { return b.ServiceProviderID == id }), nil
}

func (f *fakeBookings) ListAll(context.Context) ([]models.Booking, error) {
	return f.list(func(*models.Booking) bool { return true }), nil
}

func (f *fakeBookings) UpdateStatus(_ context.Context, actor models.Actor, id uuid.UUID, to models.BookingStatus) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperr.NotFound("Booking not found")
	}
	next, err := workflow.TransitionBooking(*b, to, actor, time.Now())
	if err != nil {
		return nil, err
	}
	*b = next
	return &next, nil
}

func (f *fakeBookings) ProviderInfo(ctx context.Context, id uuid.UUID) (*models.ProviderInfo, error) {
	u, err := f.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	info := &models.ProviderInfo{Provider: u, Bookings: map[models.BookingStatus]int{}}
	for _, b := range f.list(func(b *models.Booking) bool { return b.ServiceProviderID == id }) {
		info.Bookings[b.Status]++
		info.Total++
	}
	return info, nil
}

type fakePolls struct {
	mu    sync.Mutex
	polls map[uuid.UUID]*models.Poll
}

func newFakePolls() *fakePolls {
	return &fakePolls{polls: make(map[uuid.UUID]*models.Poll)}
}

func (f *fakePolls) Create(_ context.Context, actor models.Actor, req *models.CreatePollRequest) (*models.Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &models.Poll{ID: uuid.New(), Question: req.Question, CreatedBy: actor.UserID,
		ExpiresAt: req.ExpiresAt, Votes: []models.PollVote{}}
	for _, o := range req.Options {
		p.Options = append(p.Options, models.PollOption{Text: o})
	}
	f.polls[p.ID] = p
	return p, nil
}

func (f *fakePolls) List(context.Context) ([]models.Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Poll{}
	for _, p := range f.polls {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePolls) ListActive(ctx context.Context) ([]models.Poll, error) {
	all, _ := f.List(ctx)
	out := []models.Poll{}
	for _, p := range all {
		if !p.Expired(time.Now()) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePolls) Get(_ context.Context, id uuid.UUID) (*models.Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.polls[id]
	if !ok {
		return nil, apperr.NotFound("Poll not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakePolls) Analytics(ctx context.Context, id uuid.UUID) (*models.PollAnalytics, error) {
	p, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.PollAnalytics{PollID: p.ID, Question: p.Question, TotalVotes: p.TotalVotes(), Results: p.Results()}, nil
}

func (f *fakePolls) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.polls[id]; !ok {
		return apperr.NotFound("Poll not found")
	}
	delete(f.polls, id)
	return nil
}

func (f *fakePolls) Vote(_ context.Context, actor models.Actor, id uuid.UUID, option string) (*models.Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.polls[id]
	if !ok {
		return nil, apperr.NotFound("Poll not found")
	}
	next, err := workflow.CastVote(*p, option, actor, time.Now())
	if err != nil {
		return nil, err
	}
	*p = next
	return &next, nil
}

type fakeSOS struct {
	mu     sync.Mutex
	alerts []*models.SOSAlert
}

func (f *fakeSOS) Create(_ context.Context, actor models.Actor, req *models.CreateSOSRequest) (*models.SOSAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := &models.SOSAlert{ID: uuid.New(), UserID: actor.UserID, Type: req.Type, CreatedAt: time.Now()}
	f.alerts = append(f.alerts, a)
	return a, nil
}

func (f *fakeSOS) List(context.Context) ([]models.SOSAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.SOSAlert{}
	for _, a := range f.alerts {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeSOS) Respond(_ context.Context, actor models.Actor, id uuid.UUID) (*models.SOSAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.ID != id {
			continue
		}
		next, err := workflow.RespondSOS(*a, actor, time.Now())
		if err != nil {
			return nil, err
		}
		*a = next
		return &next, nil
	}
	return nil, apperr.NotFound("SOS alert not found")
}
