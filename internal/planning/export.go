package planning

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Reorder Candidates"

var exportHeader = []interface{}{
	"Part ID", "Part Name", "Part Code", "Urgency", "Reason",
	"Current Stock", "Reorder Point", "Lead Time (days)", "Usage / Day",
	"Forecasted Usage", "Max Threshold", "Recommended Qty", "Depletion Date",
}

// WriteWorkbook writes the ranked candidates as an XLSX sheet, keeping the
// order they were given in.
func WriteWorkbook(w io.Writer, candidates []Candidate, horizonDays int) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("sheet adı verilemedi: %w", err)
	}

	header := exportHeader
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("başlık yazılamadı: %w", err)
	}

	for i, c := range candidates {
		var maxThreshold interface{}
		if c.MaxThreshold != nil {
			maxThreshold = *c.MaxThreshold
		}

		row := []interface{}{
			c.PartID, c.PartName, c.PartCode, string(c.Urgency), c.Reason,
			c.CurrentStock, c.ReorderPoint, c.LeadTimeDays, c.UsageRatePerDay,
			c.ForecastedUsageWindow, maxThreshold, c.RecommendedQuantity,
			c.DepletionDate.Format(time.RFC3339),
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cellRef, &row); err != nil {
			return fmt.Errorf("satır %d yazılamadı: %w", i+2, err)
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       "Reorder candidates",
		Description: fmt.Sprintf("horizon_days=%d", horizonDays),
		Creator:     "mes-planner",
	}); err != nil {
		return fmt.Errorf("doküman bilgisi yazılamadı: %w", err)
	}

	return f.Write(w)
}
