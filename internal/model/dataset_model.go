package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Dataset struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string         `gorm:"type:text;not null"`
	Fingerprint string         `gorm:"type:varchar(100);not null;index"`
	Status      string         `gorm:"type:varchar(20);not null;default:'pending'"`
	Metadata    datatypes.JSON `gorm:"type:jsonb"`
	ErrorDetail string         `gorm:"type:text"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Dataset) TableName() string {
	return "datasets"
}
