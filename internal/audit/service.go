package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mes-planner/internal/apperror"
	"mes-planner/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	EntityType    string
	EntityID      uint
	Action        models.AuditAction
	Description   string
	CorrelationID string
	Before        any
	After         any
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) WriteLog(ctx context.Context, opts LogOptions) error {
	entry := models.AuditLog{
		EntityType:    opts.EntityType,
		EntityID:      opts.EntityID,
		Action:        opts.Action,
		Description:   opts.Description,
		CorrelationID: opts.CorrelationID,
		BeforeData:    toJSON(opts.Before),
		AfterData:     toJSON(opts.After),
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}
	return nil
}

type ListFilter struct {
	EntityType string
	EntityID   uint
	Limit      int
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var logs []models.AuditLog
	if err := q.Order("id desc").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("audit loglar listelenemedi: %w", err)
	}
	return logs, nil
}

// Undo reverts a forecast change and records the reversal. Purchase orders
// live in ERP and cannot be undone from here.
func (s *Service) Undo(ctx context.Context, logID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.AuditLog
		if err := tx.First(&entry, "id = ?", logID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("audit log", logID)
			}
			return fmt.Errorf("log okunamadı: %w", err)
		}

		if entry.IsUndone {
			return apperror.Validation("id", "bu işlem zaten geri alınmış")
		}
		if entry.EntityType != models.AuditEntityForecast {
			return apperror.Validation("entity_type", "bu entity tipi geri alınamaz: "+entry.EntityType)
		}

		entityID := entry.EntityID
		switch entry.Action {
		case models.AuditActionCreate:
			res := tx.Delete(&models.Forecast{}, "id = ?", entry.EntityID)
			if res.Error != nil {
				return fmt.Errorf("forecast silinemedi: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return apperror.NotFound("forecast", entry.EntityID)
			}

		case models.AuditActionUpdate:
			before, err := decodeForecast(entry.BeforeData)
			if err != nil {
				return err
			}
			res := tx.Model(&models.Forecast{}).Where("id = ?", entry.EntityID).Updates(map[string]interface{}{
				"part_code":        before.PartCode,
				"forecasted_usage": before.ForecastedUsage,
				"job_id":           before.JobID,
				"job_start_date":   before.JobStartDate,
				"job_end_date":     before.JobEndDate,
			})
			if res.Error != nil {
				return fmt.Errorf("forecast geri yüklenemedi: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return apperror.NotFound("forecast", entry.EntityID)
			}

		case models.AuditActionDelete:
			before, err := decodeForecast(entry.BeforeData)
			if err != nil {
				return err
			}
			before.ID = 0
			if err := tx.Create(&before).Error; err != nil {
				return fmt.Errorf("forecast geri oluşturulamadı: %w", err)
			}
			entityID = before.ID

		default:
			return apperror.Validation("action", "bu işlem türü geri alınamaz")
		}

		now := time.Now()
		entry.IsUndone = true
		entry.UndoneAt = &now
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("log güncellenemedi: %w", err)
		}

		undoLog := models.AuditLog{
			EntityType:  entry.EntityType,
			EntityID:    entityID,
			Action:      models.AuditActionUndo,
			Description: fmt.Sprintf("Geri alındı: %s", entry.Description),
			BeforeData:  entry.AfterData,
			AfterData:   entry.BeforeData,
			Undone:      true,
		}
		if err := tx.Create(&undoLog).Error; err != nil {
			return fmt.Errorf("undo log kaydedilemedi: %w", err)
		}
		return nil
	})
}

func decodeForecast(data string) (models.Forecast, error) {
	var f models.Forecast
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		return f, fmt.Errorf("audit verisi çözümlenemedi: %w", err)
	}
	return f, nil
}

// jsonb/text kolonları için boş string yerine "null"
func toJSON(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
