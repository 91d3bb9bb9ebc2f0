package models

import (
	"context"
	"errors"
	"time"

	"github.com/kopnusantara/koperasi_backend/config"
	"gorm.io/gorm"
)

type Cooperative struct {
	ID                 int       `gorm:"primary_key" json:"id"`
	Name               string    `gorm:"size:255;not null" json:"name" binding:"required"`
	RegistrationNumber string    `gorm:"size:255" json:"registration_number"`
	City               string    `gorm:"size:255" json:"city"`
	Province           string    `gorm:"size:255" json:"province"`
	Address            string    `gorm:"type:text" json:"address"`
	Phone              string    `gorm:"size:50" json:"phone"`
	Email              string    `gorm:"size:255" json:"email"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (obj Cooperative) GetId() int {
	return obj.ID
}

func GetCooperative(ctx context.Context, id int) (*Cooperative, error) {
	db := config.GetDB()

	var coop Cooperative
	if err := db.WithContext(ctx).First(&coop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coop, nil
}
