package models

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Customer{},
		&Service{},
		&Order{},
		&OrderLineItem{},
		&OrderHistory{},
		&AuditLog{},
		&NotificationLog{},
	)
}
