package database

import (
	"backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM and migrates
// the core models.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.InCityTravel{},
		&model.OutOfCityTravel{},
		&model.PersonalRequest{},
		&model.LeaveRequest{},
		&model.AuditLog{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
