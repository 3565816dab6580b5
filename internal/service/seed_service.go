package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/talenttune/talenttune-api/internal/models"
	"github.com/talenttune/talenttune-api/internal/repository"
)

// SeedService bootstraps the minimum data the application needs: one
// administrator account and the default room catalogue.
type SeedService struct {
	users      repository.UserRepository
	rooms      repository.RoomRepository
	bcryptCost int
	logger     zerolog.Logger
}

// NewSeedService builds the bootstrap service.
func NewSeedService(users repository.UserRepository, rooms repository.RoomRepository, bcryptCost int, logger zerolog.Logger) *SeedService {
	return &SeedService{
		users:      users,
		rooms:      rooms,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("component", "seed_service").Logger(),
	}
}

// Bootstrap ensures an administrator exists and the room catalogue is
// populated. Idempotent: it only writes when the records are missing.
func (s *SeedService) Bootstrap(ctx context.Context) error {
	if err := s.ensureAdmin(ctx); err != nil {
		return err
	}
	return s.ensureRooms(ctx)
}

func (s *SeedService) ensureAdmin(ctx context.Context) error {
	count, err := s.users.CountByRole(ctx, models.RoleAdministrator)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), s.bcryptCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:     "Admin User",
		Email:    "admin@example.com",
		Password: string(hashed),
		Role:     models.RoleAdministrator,
		Jabatan:  "MANAGER SINTANG POWER GENERATION UNIT",
	}

	if err := s.users.Create(ctx, &admin); err != nil {
		return err
	}

	s.logger.Info().Str("email", admin.Email).Msg("initial administrator created")
	return nil
}

func (s *SeedService) ensureRooms(ctx context.Context) error {
	count, err := s.rooms.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.Room{
		{Name: "Ruang Rapat 1", Capacity: 20, Location: "Lantai 2"},
		{Name: "Ruang Rapat 2", Capacity: 15, Location: "Lantai 3"},
		{Name: "Ruang Rapat 3", Capacity: 10, Location: "Lantai 4"},
	}

	for i := range defaults {
		if err := s.rooms.Create(ctx, &defaults[i]); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return err
		}
	}

	s.logger.Info().Int("rooms", len(defaults)).Msg("default rooms created")
	return nil
}
