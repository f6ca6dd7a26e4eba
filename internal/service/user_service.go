package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"wayfarer/internal/models"
	"wayfarer/internal/repository"
	"wayfarer/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles accounts: registration, authentication, profile
// updates and the admin role operations with the last-admin guard.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type UpdateProfileInput struct {
	Actor  models.Actor
	Bio    *string
	Avatar *string
}

// Register creates a new account with the default role.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, models.NewValidationError("An account with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
		return nil, models.NewValidationError("Username is taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    strings.ToLower(in.Email),
		Password: string(hashed),
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and returns the matching user. Invalid
// email and invalid password both produce the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// GetUser returns a user by id.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns users, newest first. Admin only.
func (s *UserService) ListUsers(ctx context.Context, actor models.Actor, limit, offset int) ([]*models.User, error) {
	if !actor.IsAdmin() {
		return nil, models.NewUnauthorizedError("Admin access required")
	}
	return s.userRepo.List(ctx, limit, offset)
}

// UpdateProfile updates the actor's own bio and avatar.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if in.Actor.Anonymous() {
		return nil, models.NewUnauthorizedError("Sign in to update your profile")
	}
	user, err := s.GetUser(ctx, in.Actor.ID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func validRole(role string) bool {
	switch role {
	case models.RoleAdmin, models.RoleEditor, models.RoleContributor, models.RoleUser:
		return true
	}
	return false
}

// ChangeRole sets a user's role. Demoting the only remaining admin is
// refused so the platform can never lock itself out.
func (s *UserService) ChangeRole(ctx context.Context, actor models.Actor, targetID uint, role string) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, models.NewUnauthorizedError("Admin access required")
	}
	if !validRole(role) {
		return nil, models.NewValidationError("Unknown role")
	}
	target, err := s.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if target.Role == models.RoleAdmin && role != models.RoleAdmin {
		admins, err := s.userRepo.CountByRole(ctx, models.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, models.NewUnauthorizedError("Cannot demote the last admin")
		}
	}

	if err := s.userRepo.UpdateRole(ctx, targetID, role); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "role change",
		"user_id", targetID, "from", target.Role, "to", role, "admin_id", actor.ID)
	return s.GetUser(ctx, targetID)
}

// DeleteUser removes an account. Deleting the only remaining admin is
// refused for the same reason demoting one is.
func (s *UserService) DeleteUser(ctx context.Context, actor models.Actor, targetID uint) error {
	if !actor.IsAdmin() {
		return models.NewUnauthorizedError("Admin access required")
	}
	target, err := s.GetUser(ctx, targetID)
	if err != nil {
		return err
	}

	if target.Role == models.RoleAdmin {
		admins, err := s.userRepo.CountByRole(ctx, models.RoleAdmin)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return models.NewUnauthorizedError("Cannot delete the last admin")
		}
	}

	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "account deleted", "user_id", targetID, "admin_id", actor.ID)
	return nil
}
