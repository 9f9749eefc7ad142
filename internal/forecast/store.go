package forecast

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mes-planner/internal/apperror"
	"mes-planner/internal/models"

	"gorm.io/gorm"
)

// Input carries the mutable fields of a forecast for create and update.
type Input struct {
	PartCode        string
	ForecastedUsage int
	JobID           *string
	JobStartDate    *time.Time
	JobEndDate      *time.Time
}

func (in *Input) normalize() error {
	in.PartCode = strings.TrimSpace(in.PartCode)
	if in.PartCode == "" {
		return apperror.Validation("part_code", "boş olamaz")
	}
	if in.ForecastedUsage < 0 {
		return apperror.Validation("forecasted_usage", "negatif olamaz")
	}
	if in.JobID != nil {
		id := strings.TrimSpace(*in.JobID)
		if id == "" {
			in.JobID = nil
		} else {
			in.JobID = &id
		}
	}
	if in.JobStartDate != nil && in.JobEndDate != nil && in.JobEndDate.Before(*in.JobStartDate) {
		return apperror.Validation("job_end_date", "job_start_date'ten önce olamaz")
	}
	return nil
}

func (in Input) apply(f *models.Forecast) {
	f.PartCode = in.PartCode
	f.ForecastedUsage = in.ForecastedUsage
	f.JobID = in.JobID
	f.JobStartDate = in.JobStartDate
	f.JobEndDate = in.JobEndDate
}

// Store owns forecast persistence. Every write runs in its own transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) List(ctx context.Context) ([]models.Forecast, error) {
	var rows []models.Forecast
	if err := s.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("forecastlar listelenemedi: %w", err)
	}
	return rows, nil
}

func (s *Store) Get(ctx context.Context, id uint) (*models.Forecast, error) {
	var row models.Forecast
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, id)
	}
	return &row, nil
}

func (s *Store) Create(ctx context.Context, in Input) (*models.Forecast, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var row models.Forecast
	in.apply(&row)

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("forecast oluşturulamadı: %w", err)
	}
	return &row, nil
}

// CreateBatch inserts all rows in one transaction; one invalid row rejects
// the whole batch.
func (s *Store) CreateBatch(ctx context.Context, inputs []Input) ([]models.Forecast, error) {
	rows := make([]models.Forecast, len(inputs))
	for i := range inputs {
		if err := inputs[i].normalize(); err != nil {
			return nil, fmt.Errorf("satır %d: %w", i+1, err)
		}
		inputs[i].apply(&rows[i])
	}
	if len(rows) == 0 {
		return rows, nil
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	}); err != nil {
		return nil, fmt.Errorf("forecastlar oluşturulamadı: %w", err)
	}
	return rows, nil
}

// Update replaces every mutable field of the forecast and returns the new
// and the previous state.
func (s *Store) Update(ctx context.Context, id uint, in Input) (updated, previous *models.Forecast, err error) {
	if err := in.normalize(); err != nil {
		return nil, nil, err
	}

	var row models.Forecast
	var before models.Forecast
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			return notFoundOr(err, id)
		}
		before = row
		in.apply(&row)
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, nil, wrapUnlessKnown(err, "forecast güncellenemedi")
	}
	return &row, &before, nil
}

// Delete removes the forecast and returns what was deleted.
func (s *Store) Delete(ctx context.Context, id uint) (*models.Forecast, error) {
	var row models.Forecast
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			return notFoundOr(err, id)
		}
		return tx.Delete(&models.Forecast{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, wrapUnlessKnown(err, "forecast silinemedi")
	}
	return &row, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Forecast{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("forecast sayılamadı: %w", err)
	}
	return n, nil
}

func notFoundOr(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("forecast", id)
	}
	return err
}

func wrapUnlessKnown(err error, msg string) error {
	if apperror.IsKnown(err) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
