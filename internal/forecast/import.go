package forecast

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"mes-planner/internal/apperror"
	"mes-planner/internal/audit"
	"mes-planner/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// ParseWorkbook reads forecasts from the first sheet of an XLSX file. Column
// order: part_code, forecasted_usage, job_id, job_start_date, job_end_date.
// A header row is detected and skipped; empty rows are ignored.
func ParseWorkbook(r io.Reader) ([]Input, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.Validation("file", "Excel dosyası okunamadı: "+err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperror.Validation("file", "Excel dosyasında sheet bulunamadı")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperror.Validation("file", "Sheet okunamadı: "+err.Error())
	}

	start := 0
	if len(rows) > 0 && isHeaderRow(rows[0]) {
		start = 1
	}

	inputs := make([]Input, 0, len(rows))
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || strings.TrimSpace(cell(row, 0)) == "" {
			continue
		}

		in, err := parseRow(row)
		if err != nil {
			return nil, apperror.Validation("file", fmt.Sprintf("satır %d: %v", i+1, err))
		}
		inputs = append(inputs, in)
	}

	return inputs, nil
}

// Başlık satırı: kullanım hücresi sayı değil ve etiketler başlık gibi.
// "PART-100" gibi kodlarla başlayan başlıksız dosyalar ilk satırı kaybetmez.
func isHeaderRow(row []string) bool {
	if _, err := strconv.ParseFloat(strings.TrimSpace(cell(row, 1)), 64); err == nil {
		return false
	}
	first := strings.ToUpper(strings.TrimSpace(cell(row, 0)))
	second := strings.ToUpper(strings.TrimSpace(cell(row, 1)))
	return strings.Contains(first, "PART") || strings.Contains(first, "KOD") ||
		strings.Contains(second, "USAGE") || strings.Contains(second, "KULLANIM")
}

func parseUsage(s string) (int, error) {
	s = strings.TrimSpace(s)
	usage, err := strconv.Atoi(s)
	if err != nil {
		// "30.0" gibi değerler
		fv, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || fv != float64(int(fv)) {
			return 0, fmt.Errorf("forecasted_usage tamsayı olmalı: %q", s)
		}
		usage = int(fv)
	}
	return usage, nil
}

func parseRow(row []string) (Input, error) {
	usage, err := parseUsage(cell(row, 1))
	if err != nil {
		return Input{}, err
	}

	in := Input{
		PartCode:        strings.TrimSpace(cell(row, 0)),
		ForecastedUsage: usage,
	}

	if jobID := strings.TrimSpace(cell(row, 2)); jobID != "" {
		in.JobID = &jobID
	}
	if in.JobStartDate, err = parseDate(cell(row, 3)); err != nil {
		return Input{}, fmt.Errorf("job_start_date: %w", err)
	}
	if in.JobEndDate, err = parseDate(cell(row, 4)); err != nil {
		return Input{}, fmt.Errorf("job_end_date: %w", err)
	}

	return in, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// POST /forecast/import
// XLSX dosyasındaki forecastları tek transaction'da ekler.
func (h *Handler) Import() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		inputs, err := ParseWorkbook(file)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası boş")
		}

		rows, err := h.store.CreateBatch(c.UserContext(), inputs)
		if err != nil {
			return err
		}
		log.Printf("XLSX import: %d forecast eklendi (%s)", len(rows), fileHeader.Filename)

		for i := range rows {
			h.writeAudit(c, audit.LogOptions{
				EntityType:  models.AuditEntityForecast,
				EntityID:    rows[i].ID,
				Action:      models.AuditActionCreate,
				Description: "Forecast import edildi: " + rows[i].PartCode,
				After:       rows[i],
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":        true,
			"imported_count": len(rows),
			"forecasts":      rows,
		})
	}
}
