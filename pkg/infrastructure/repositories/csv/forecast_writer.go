package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// ForecastHeader is the column layout of forecast exports
var ForecastHeader = []string{"TowarId", "Date", "Predicted_Qty", "Model"}

// WriteForecasts writes forecast points as CSV, one row per product week
func WriteForecasts(w io.Writer, points []entities.ForecastPoint) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ForecastHeader); err != nil {
		return fmt.Errorf("failed to write forecast header: %w", err)
	}

	for _, p := range points {
		row := []string{
			strconv.FormatInt(int64(p.ProductID), 10),
			p.Date.Format("2006-01-02"),
			strconv.FormatFloat(p.PredictedQuantity, 'f', 2, 64),
			p.Model,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write forecast row for product %d: %w", p.ProductID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteForecastsFile writes forecasts into a file, creating parent directories
func WriteForecastsFile(filename string, points []entities.ForecastPoint) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create forecast file %s: %w", filename, err)
	}
	defer file.Close()

	return WriteForecasts(file, points)
}
