// Package po holds GORM persistence objects.
// They map rows only: no business logic and no GORM associations.
package po

import (
	"time"

	"workshop/domain/material"
)

type MaterialPO struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Type      string    `gorm:"column:type;size:100;not null;index"`
	Price     int64     `gorm:"not null"`
	Balance   int       `gorm:"not null;default:0;check:balance >= 0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (MaterialPO) TableName() string {
	return "materials"
}

func FromMaterialDomain(m *material.Material) *MaterialPO {
	return &MaterialPO{
		ID:        m.ID(),
		Type:      m.Type(),
		Price:     m.Price(),
		Balance:   m.Balance(),
		CreatedAt: m.CreatedAt(),
	}
}

func (po *MaterialPO) ToDomain() *material.Material {
	return material.RebuildFromDTO(material.ReconstructionDTO{
		ID:        po.ID,
		Type:      po.Type,
		Price:     po.Price,
		Balance:   po.Balance,
		CreatedAt: po.CreatedAt,
	})
}
