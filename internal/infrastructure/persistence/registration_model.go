package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/depot/backend/internal/domain/depot"
)

// RegisteredContainerModel is the database row for a gate-out registration.
// The container snapshot and the sanitized gate-out payload are stored as
// JSON text so the schema survives upstream field changes.
type RegisteredContainerModel struct {
	ID            string    `gorm:"type:varchar(36);primaryKey"`
	UserID        int64     `gorm:"index;not null"`
	ContainerData string    `gorm:"type:text"`
	GateOutData   string    `gorm:"type:text;not null"`
	RegisteredAt  time.Time `gorm:"index;not null"`
}

// TableName overrides the GORM table name
func (RegisteredContainerModel) TableName() string {
	return "registered_containers"
}

func toRegistrationModel(reg *depot.RegisteredContainer) (*RegisteredContainerModel, error) {
	containerJSON, err := json.Marshal(reg.ContainerData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode container data: %w", err)
	}
	gateOutJSON, err := json.Marshal(reg.GateOutData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gate-out data: %w", err)
	}

	return &RegisteredContainerModel{
		ID:            reg.ID,
		UserID:        reg.UserID,
		ContainerData: string(containerJSON),
		GateOutData:   string(gateOutJSON),
		RegisteredAt:  reg.RegisteredAt,
	}, nil
}

func (m *RegisteredContainerModel) toDomain() (*depot.RegisteredContainer, error) {
	reg := &depot.RegisteredContainer{
		ID:           m.ID,
		UserID:       m.UserID,
		RegisteredAt: m.RegisteredAt,
	}

	if m.ContainerData != "" {
		if err := json.Unmarshal([]byte(m.ContainerData), &reg.ContainerData); err != nil {
			return nil, fmt.Errorf("failed to decode container data: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(m.GateOutData), &reg.GateOutData); err != nil {
		return nil, fmt.Errorf("failed to decode gate-out data: %w", err)
	}

	return reg, nil
}
