package persistence

import (
	"context"
	"fmt"

	"github.com/depot/backend/internal/domain/depot"
	"gorm.io/gorm"
)

// GormRegistrationStore implements depot.RegistrationStore using GORM
type GormRegistrationStore struct {
	db *gorm.DB
}

// NewGormRegistrationStore creates a registration store and migrates its schema
func NewGormRegistrationStore(db *gorm.DB) (*GormRegistrationStore, error) {
	if err := db.AutoMigrate(&RegisteredContainerModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate registration schema: %w", err)
	}
	return &GormRegistrationStore{db: db}, nil
}

// Save persists a registration record
func (s *GormRegistrationStore) Save(ctx context.Context, reg *depot.RegisteredContainer) error {
	model, err := toRegistrationModel(reg)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(model).Error
}

// ListByUser returns all registrations created by the given user, newest first
func (s *GormRegistrationStore) ListByUser(ctx context.Context, userID int64) ([]*depot.RegisteredContainer, error) {
	var models []RegisteredContainerModel
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("registered_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	regs := make([]*depot.RegisteredContainer, 0, len(models))
	for i := range models {
		reg, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

// Close is a no-op; the connection is owned by Database
func (s *GormRegistrationStore) Close() error {
	return nil
}

// Ensure GormRegistrationStore implements RegistrationStore
var _ depot.RegistrationStore = (*GormRegistrationStore)(nil)
