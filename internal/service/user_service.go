package service

import (
	"context"
	"fmt"
	"strings"

	"newsletter/internal/models"
	"newsletter/internal/repository"
	"newsletter/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries a partial profile update; nil fields are left unchanged.
type UpdateProfileInput struct {
	UserID     uint
	Username   *string
	FirstName  *string
	LastName   *string
	Department *string
	Image      *string
}

const maxNameLen = 150

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile returns the public profile for username.
func (s *UserService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetProfile(ctx, username)
}

// GetByUsername returns the user or a not-found error.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(name); err != nil {
			fields["username"] = err.Error()
		} else {
			user.Username = name
		}
	}
	if in.FirstName != nil {
		if len(*in.FirstName) > maxNameLen {
			fields["first_name"] = "Ensure this field has no more than 150 characters."
		} else {
			user.FirstName = strings.TrimSpace(*in.FirstName)
		}
	}
	if in.LastName != nil {
		if len(*in.LastName) > maxNameLen {
			fields["last_name"] = "Ensure this field has no more than 150 characters."
		} else {
			user.LastName = strings.TrimSpace(*in.LastName)
		}
	}
	if in.Department != nil {
		dept, ok := models.ParseDepartment(*in.Department)
		if !ok {
			fields["department"] = fmt.Sprintf("%q is not a valid choice.", *in.Department)
		} else {
			user.Department = dept
		}
	}
	if in.Image != nil {
		user.Image = strings.TrimSpace(*in.Image)
	}
	if len(fields) > 0 {
		return nil, models.NewFieldsError(fields)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateRole lets an admin, President or Vice President change another user's role.
func (s *UserService) UpdateRole(ctx context.Context, actorID uint, username, role string) (*models.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !actor.Role.CanAssignRoles() {
		return nil, models.NewForbiddenError("Only admins, the President or the Vice President can change roles")
	}
	return s.AssignRole(ctx, username, role)
}

// AssignRole sets username's role without an authorization check. Used by admin tooling.
func (s *UserService) AssignRole(ctx context.Context, username, role string) (*models.User, error) {
	r, ok := models.ParseRole(role)
	if !ok {
		return nil, models.NewFieldError("role", fmt.Sprintf("%q is not a valid choice.", role))
	}
	target, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateRole(ctx, target.ID, r); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, target.ID)
}

func (s *UserService) SetAdmin(ctx context.Context, username string, isAdmin bool) (*models.User, error) {
	target, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetAdmin(ctx, target.ID, isAdmin); err != nil {
		return nil, err
	}
	target.IsAdmin = isAdmin
	return target, nil
}

func (s *UserService) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListAdmins(ctx)
}

// IsAdmin reports whether userID has the admin flag.
func (s *UserService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}
