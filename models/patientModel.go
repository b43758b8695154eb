package models

import (
	"time"
)

// Patient model. ID is the subject of the patient's access token.
type Patient struct {
	ID          string    `gorm:"primaryKey;column:id" json:"id"`
	Name        string    `gorm:"column:name;not null;index" json:"name"`
	Email       string    `gorm:"column:email;index" json:"email"`
	Phone       string    `gorm:"column:phone" json:"phone"`
	Gender      string    `gorm:"column:gender;check:gender IN ('Male', 'Female', 'Other', '')" json:"gender"`
	DateOfBirth string    `gorm:"column:date_of_birth" json:"date_of_birth"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Patient) TableName() string {
	return "patients"
}
