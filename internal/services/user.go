package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/auth"
	"github.com/societyhub/community-server/internal/database"
	"github.com/societyhub/community-server/internal/models"
)

const userColumns = `id, name, email, password_hash, role, house_number, services_offered,
	availability, assigned_house_no, phone, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.HouseNumber,
		&u.ServicesOffered, &u.Availability, &u.AssignedHouseNo, &u.Phone, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserService handles registration, credential checks and profile management
type UserService struct {
	clock
	db     database.DB
	logger *zap.SugaredLogger
}

// NewUserService creates a new user service
func NewUserService(db database.DB, logger *zap.SugaredLogger) *UserService {
	return &UserService{db: db, logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a hashed password
func (s *UserService) Register(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := s.Now()
	u := &models.User{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(req.Name),
		Email:           normalizeEmail(req.Email),
		PasswordHash:    hash,
		Role:            req.Role,
		HouseNumber:     strings.TrimSpace(req.HouseNumber),
		ServicesOffered: req.ServicesOffered,
		Availability:    req.Availability,
		AssignedHouseNo: req.AssignedHouseNo,
		Phone:           req.Phone,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if u.ServicesOffered == nil {
		u.ServicesOffered = []string{}
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, role, house_number, services_offered,
			availability, assigned_house_no, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.HouseNumber, u.ServicesOffered,
		u.Availability, u.AssignedHouseNo, u.Phone, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err, "users_email_key") {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.logger.Infow("User registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Authenticate finds the user by name or email and checks the password and
// the role they claim to sign in as.
func (s *UserService) Authenticate(ctx context.Context, req *models.SigninRequest) (*models.User, error) {
	identifier := strings.TrimSpace(req.NameOrEmail)

	// An exact email match wins over a name match
	query := `SELECT ` + userColumns + ` FROM users
		WHERE email = $1 OR name = $2
		ORDER BY (email = $1) DESC, created_at
		LIMIT 1`

	u, err := scanUser(s.db.QueryRow(ctx, query, normalizeEmail(identifier), identifier))
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.Auth("User does not exist")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if u.Role != req.Role {
		return nil, apperr.Auth("Unauthorized role access")
	}

	ok, err := auth.CheckPassword(u.PasswordHash, req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok {
		return nil, apperr.Auth("Invalid credentials")
	}
	return u, nil
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "User not found", "get user")
	}
	return u, nil
}

// List returns all users, or only those holding role when it is non-empty.
func (s *UserService) List(ctx context.Context, role models.Role) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ($1 = '' OR role = $1) ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Update changes profile fields. Users may edit themselves; admins anyone.
func (s *UserService) Update(ctx context.Context, actor models.Actor, id uuid.UUID, req *models.UpdateUserRequest) (*models.User, error) {
	if actor.Role != models.RoleAdmin && actor.UserID != id {
		return nil, apperr.Forbidden("You can only update your own profile")
	}

	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		u.Email = normalizeEmail(*req.Email)
	}
	if req.HouseNumber != nil {
		u.HouseNumber = strings.TrimSpace(*req.HouseNumber)
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Availability != nil {
		u.Availability = *req.Availability
	}
	u.UpdatedAt = s.Now()

	query := `
		UPDATE users
		SET name = $2, email = $3, house_number = $4, phone = $5, availability = $6, updated_at = $7
		WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, query, u.ID, u.Name, u.Email, u.HouseNumber, u.Phone, u.Availability, u.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "users_email_key") {
			return nil, apperr.Conflict("Email already in use")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

// Delete removes the user row only. Complaints, passes, bookings, tasks and
// alerts that reference the user stay as they are.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User not found")
	}
	s.logger.Infow("User deleted", "user_id", id)
	return nil
}
