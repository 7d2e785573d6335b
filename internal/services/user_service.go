package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-api/internal/models"
	"catalog-api/internal/validation"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	db        *sql.DB
	logger    zerolog.Logger
	validator *validation.Validator
	now       func() time.Time
	cost      int
}

func NewUserService(db *sql.DB, logger zerolog.Logger) *UserService {
	return &UserService{
		db:        db,
		logger:    logger,
		validator: validation.New(),
		now:       utcNow,
		cost:      bcrypt.DefaultCost,
	}
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID    int64
	Roles models.Roles
}

// UpdateScope selects which fields of a user record an actor may change.
type UpdateScope int

const (
	ScopeSelf UpdateScope = iota + 1
	ScopeRoles
)

// DecideUserUpdate authorizes actor to modify target. Users edit their own
// profile; administrators edit the roles of others.
func DecideUserUpdate(actor Actor, targetID int64) (UpdateScope, error) {
	if actor.ID == targetID {
		return ScopeSelf, nil
	}
	if actor.Roles.Has(models.RoleAdmin) {
		return ScopeRoles, nil
	}
	return 0, ErrForbidden
}

// CanDeleteUser allows users to remove themselves and administrators to
// remove anyone.
func CanDeleteUser(actor Actor, targetID int64) error {
	if actor.ID == targetID || actor.Roles.Has(models.RoleAdmin) {
		return nil
	}
	return ErrForbidden
}

const userColumns = "id, username, email, password_hash, roles, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }, u *models.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Roles, &u.CreatedAt, &u.UpdatedAt)
}

func (s *UserService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error hashing password")
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if details := s.validator.Struct(req); len(details) > 0 {
		return nil, validationError(details)
	}

	return s.create(ctx, req.Username, req.Email, req.Password, models.Roles{models.RoleUser})
}

func (s *UserService) create(ctx context.Context, username, email, password string, roles models.Roles) (*models.User, error) {
	if err := s.ensureUnique(ctx, 0, username, email); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, roles, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		username, email, hashedPassword, roles, now, now,
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	userID, err := result.LastInsertId()
	if err != nil {
		s.logger.Error().Err(err).Msg("Error getting user ID")
		return nil, fmt.Errorf("failed to get user ID: %w", err)
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("User registered successfully")
	return user, nil
}

// ensureUnique rejects a username or email already used by another user.
func (s *UserService) ensureUnique(ctx context.Context, selfID int64, username, email string) error {
	var existingID int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM users WHERE (email = ? OR username = ?) AND id <> ? LIMIT 1",
		email, username, selfID,
	).Scan(&existingID)
	if err == nil {
		return ErrUserExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error().Err(err).Msg("Error checking existing user")
		return fmt.Errorf("database error: %w", err)
	}
	return nil
}

// EnsureAdmin creates the bootstrap administrator when no user has that
// email yet. Existing accounts are left unchanged.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = ?", email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("database error: %w", err)
	}

	user, err := s.create(ctx, username, email, password, models.Roles{models.RoleAdmin})
	if err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("Bootstrap administrator created")
	return nil
}

func (s *UserService) Authenticate(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, ErrInvalidCredential
	}

	var user models.User
	err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?",
		req.Email,
	), &user)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredential
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error querying user")
		return nil, fmt.Errorf("database error: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if err != nil {
		s.logger.Warn().Str("email", req.Email).Msg("Failed authentication attempt")
		return nil, ErrInvalidCredential
	}

	s.logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("User authenticated successfully")
	return &user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing users")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *UserService) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?",
		userID,
	), &user)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Error fetching user")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &user, nil
}

// UpdateProfile applies a user's changes to their own username, email and password.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd *models.SelfProfileUpdate) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var details []string
	if upd.Username.Set {
		upd.Username.Value = strings.TrimSpace(upd.Username.Value)
		details = append(details, s.validator.Var("username", upd.Username.Value, "required,max=180")...)
	}
	if upd.Email.Set {
		upd.Email.Value = strings.TrimSpace(upd.Email.Value)
		details = append(details, s.validator.Var("email", upd.Email.Value, "required,email,max=180")...)
	}
	if upd.Password.Set {
		details = append(details, s.validator.Var("password", upd.Password.Value, "required,min=6")...)
	}
	if len(details) > 0 {
		return nil, validationError(details)
	}

	upd.Username.Apply(&user.Username)
	upd.Email.Apply(&user.Email)
	if upd.Username.Set || upd.Email.Set {
		if err := s.ensureUnique(ctx, userID, user.Username, user.Email); err != nil {
			return nil, err
		}
	}
	if upd.Password.Set {
		user.PasswordHash, err = s.hash(upd.Password.Value)
		if err != nil {
			return nil, err
		}
	}
	user.UpdatedAt = s.now()

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET username = ?, email = ?, password_hash = ?, updated_at = ? WHERE id = ?",
		user.Username, user.Email, user.PasswordHash, user.UpdatedAt, userID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Error updating user")
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info().Int64("user_id", userID).Bool("password_changed", upd.Password.Set).Msg("User profile updated")
	return s.GetUserByID(ctx, userID)
}

// UpdateRoles replaces the roles of a user.
func (s *UserService) UpdateRoles(ctx context.Context, userID int64, upd *models.RoleUpdate, adminID int64) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Roles.Set {
		tag := "dive,oneof=" + strings.Join(models.KnownRoles, " ")
		if details := s.validator.Var("roles", upd.Roles.Value, tag); len(details) > 0 {
			return nil, validationError(details)
		}
		user.Roles = models.Roles(upd.Roles.Value).Normalize()
	}
	user.UpdatedAt = s.now()

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET roles = ?, updated_at = ? WHERE id = ?",
		user.Roles, user.UpdatedAt, userID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Error updating user roles")
		return nil, fmt.Errorf("failed to update user roles: %w", err)
	}

	s.logger.Info().Int64("user_id", userID).Strs("roles", user.Roles).Int64("admin_id", adminID).Msg("User roles updated")
	return s.GetUserByID(ctx, userID)
}

func (s *UserService) Delete(ctx context.Context, userID int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Error deleting user")
		return fmt.Errorf("failed to delete user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	s.logger.Info().Int64("user_id", userID).Msg("User deleted")
	return nil
}
