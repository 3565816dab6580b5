package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/talenttune/talenttune-api/internal/models"
)

// RoomRepository defines persistence operations for the room catalogue.
type RoomRepository interface {
	List(ctx context.Context) ([]models.Room, error)
	GetByID(ctx context.Context, id uint) (models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Count(ctx context.Context) (int64, error)
}

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository instantiates a GORM-backed repository.
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) List(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rooms).Error; err != nil {
		return nil, err
	}

	return rooms, nil
}

func (r *roomRepository) GetByID(ctx context.Context, id uint) (models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return models.Room{}, err
	}

	return room, nil
}

func (r *roomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *roomRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Room{}).Count(&count).Error
	return count, err
}
