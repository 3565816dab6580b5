package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/talenttune/talenttune-api/internal/dto"
	"github.com/talenttune/talenttune-api/internal/models"
	"github.com/talenttune/talenttune-api/internal/repository"
)

// User administration failure modes.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInvalidRole       = errors.New("unknown role")
	ErrLastAdministrator = errors.New("cannot delete the last administrator")
	ErrEmptyUpdate       = errors.New("at least one field must be updated")
)

// UserService exposes the administrator-facing user management use cases.
type UserService interface {
	List(ctx context.Context, filter repository.UserFilter) ([]dto.UserResponse, error)
	Create(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error)
	Update(ctx context.Context, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, id uint) error
}

type userService struct {
	users      repository.UserRepository
	validator  *validator.Validate
	bcryptCost int
	logger     zerolog.Logger
}

// NewUserService builds the user administration service.
func NewUserService(users repository.UserRepository, validate *validator.Validate, bcryptCost int, logger zerolog.Logger) UserService {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	return &userService{
		users:      users,
		validator:  validate,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context, filter repository.UserFilter) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) Create(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	role := models.RoleUser
	if payload.Role != "" {
		parsed, ok := models.ParseRole(payload.Role)
		if !ok {
			return dto.UserResponse{}, ErrInvalidRole
		}
		role = parsed
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.UserResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), s.bcryptCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:     payload.Name,
		Email:    email,
		Password: string(hashed),
		Phone:    payload.Phone,
		NIP:      payload.NIP,
		Role:     role,
		Jabatan:  payload.Jabatan,
		Bidang:   payload.Bidang,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", role.String()).Msg("user created")

	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error) {
	if payload.Empty() {
		return dto.UserResponse{}, ErrEmptyUpdate
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if payload.Name != nil {
		user.Name = *payload.Name
	}

	if payload.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*payload.Email))
		if email != user.Email {
			if _, err := s.users.GetByEmail(ctx, email); err == nil {
				return dto.UserResponse{}, ErrEmailTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.UserResponse{}, err
			}
			user.Email = email
		}
	}

	if payload.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*payload.Password), s.bcryptCost)
		if err != nil {
			return dto.UserResponse{}, err
		}
		user.Password = string(hashed)
	}

	if payload.Phone != nil {
		user.Phone = *payload.Phone
	}

	if payload.NIP != nil {
		user.NIP = *payload.NIP
	}

	if payload.Role != nil {
		role, ok := models.ParseRole(*payload.Role)
		if !ok {
			return dto.UserResponse{}, ErrInvalidRole
		}
		user.Role = role
	}

	if payload.Jabatan != nil {
		user.Jabatan = *payload.Jabatan
	}

	if payload.Bidang != nil {
		user.Bidang = *payload.Bidang
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

// Delete removes a user, refusing to drop the last administrator so the
// system can never lock itself out.
func (s *userService) Delete(ctx context.Context, id uint) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.Role == models.RoleAdministrator {
		admins, err := s.users.CountByRole(ctx, models.RoleAdministrator)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdministrator
		}
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info().Uint("user_id", id).Msg("user deleted")
	return nil
}
