package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type classModel struct {
	ID             string    `gorm:"column:id;type:varchar(36);primaryKey"`
	Name           string    `gorm:"column:name;type:varchar(100);not null"`
	Instructor     string    `gorm:"column:instructor;type:varchar(100);not null"`
	StartTime      time.Time `gorm:"column:start_time;not null;index"`
	TotalSlots     int       `gorm:"column:total_slots;not null;check:chk_fitness_classes_total_slots,total_slots > 0"`
	RemainingSlots int       `gorm:"column:remaining_slots;not null;check:chk_fitness_classes_remaining_slots,remaining_slots >= 0 AND remaining_slots <= total_slots"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (classModel) TableName() string { return "fitness_classes" }

func (m *classModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type bookingModel struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey"`
	ClassID   string    `gorm:"column:class_id;type:varchar(36);not null;uniqueIndex:idx_bookings_class_email,priority:1"`
	UserEmail string    `gorm:"column:user_email;type:varchar(254);not null;index;uniqueIndex:idx_bookings_class_email,priority:2"`
	UserName  string    `gorm:"column:user_name;type:varchar(100);not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`

	Class *classModel `gorm:"foreignKey:ClassID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (bookingModel) TableName() string { return "bookings" }

func (m *bookingModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Models lists every table for AutoMigrate, parents first.
func Models() []interface{} {
	return []interface{}{&classModel{}, &bookingModel{}}
}
