package models

import "time"

// Forecast: bir parça için beklenen malzeme tüketimi (MES'e ait kayıt).
type Forecast struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	PartCode        string     `gorm:"size:64;not null;index" json:"part_code"`
	ForecastedUsage int        `gorm:"not null" json:"forecasted_usage"`
	JobID           *string    `gorm:"size:64" json:"job_id"`
	JobStartDate    *time.Time `json:"job_start_date"`
	JobEndDate      *time.Time `json:"job_end_date"`
	CreatedAt       time.Time  `json:"-"`
	UpdatedAt       time.Time  `json:"-"`
}
