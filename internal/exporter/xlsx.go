package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"cinepulse/internal/config"
	"cinepulse/internal/domain"
)

// XLSXWriter renders the full analysis report as a multi-sheet workbook.
type XLSXWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewXLSXWriter creates an XLSX report writer.
func NewXLSXWriter(paths *config.Paths, logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{paths: paths, logger: logger}
}

// WriteReport writes the report to name under the reports directory, with an
// Overview sheet, a Summary sheet, a Correlations sheet, and one sheet per
// aggregate dimension.
func (w *XLSXWriter) WriteReport(name string, report Report) error {
	fullPath := w.paths.ReportPath(name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create reports directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeOverviewSheet(f, report.Overview); err != nil {
		return err
	}
	if err := w.writeSummarySheet(f, report.Summary); err != nil {
		return err
	}
	if err := w.writeCorrelationSheet(f, report.Correlations); err != nil {
		return err
	}

	dims := make([]domain.Dimension, 0, len(report.Aggregates))
	for dim := range report.Aggregates {
		dims = append(dims, dim)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })
	for _, dim := range dims {
		if err := w.writeAggregateSheet(f, dim, report.Aggregates[dim]); err != nil {
			return err
		}
	}

	// excelize seeds the workbook with a default sheet.
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	w.logger.Info("wrote XLSX report",
		slog.String("path", fullPath),
		slog.Int("sheets", 3+len(dims)))
	return nil
}

func (w *XLSXWriter) writeOverviewSheet(f *excelize.File, overview domain.Overview) error {
	rows := [][]any{
		{"metric", "value"},
		{"movies", overview.Movies},
		{"blockbusters", overview.Blockbusters},
		{"blockbuster_share", cellValue(overview.BlockbusterShare)},
		{"median_budget", cellValue(overview.MedianBudget)},
		{"median_revenue", cellValue(overview.MedianRevenue)},
		{"median_roi", cellValue(overview.MedianROI)},
		{"mean_popularity", cellValue(overview.MeanPopularity)},
	}
	return w.writeSheet(f, "Overview", rows)
}

func (w *XLSXWriter) writeSummarySheet(f *excelize.File, summary domain.SummaryStats) error {
	rows := [][]any{
		{"field", "count", "mean", "median", "std_dev"},
	}
	for _, entry := range []struct {
		name string
		stat domain.Stat
	}{
		{"budget", summary.Budget},
		{"revenue", summary.Revenue},
		{"roi", summary.ROI},
		{"runtime", summary.Runtime},
	} {
		rows = append(rows, []any{
			entry.name, entry.stat.Count,
			cellValue(entry.stat.Mean),
			cellValue(entry.stat.Median),
			cellValue(entry.stat.StdDev),
		})
	}
	return w.writeSheet(f, "Summary", rows)
}

func (w *XLSXWriter) writeCorrelationSheet(f *excelize.File, matrix domain.CorrelationMatrix) error {
	header := make([]any, 0, len(matrix.Fields)+1)
	header = append(header, "field")
	for _, field := range matrix.Fields {
		header = append(header, field)
	}
	rows := [][]any{header}
	for i, field := range matrix.Fields {
		row := make([]any, 0, len(matrix.Fields)+1)
		row = append(row, field)
		for j := range matrix.Fields {
			row = append(row, cellValue(matrix.Values[i][j]))
		}
		rows = append(rows, row)
	}
	return w.writeSheet(f, "Correlations", rows)
}

func (w *XLSXWriter) writeAggregateSheet(f *excelize.File, dim domain.Dimension, groups []domain.GroupAggregate) error {
	header := make([]any, len(aggregateHeaders))
	for i, h := range aggregateHeaders {
		header[i] = h
	}
	rows := [][]any{header}
	for _, g := range groups {
		rows = append(rows, []any{
			g.Key, g.Count,
			g.RevenueCount, cellValue(g.MeanRevenue),
			g.ROICount, cellValue(g.MeanROI),
			g.Blockbusters, cellValue(g.BlockbusterRate),
			g.LowConfidence,
		})
	}
	return w.writeSheet(f, sheetName(dim), rows)
}

func (w *XLSXWriter) writeSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("address row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write sheet %s row %d: %w", name, i+1, err)
		}
	}
	return nil
}

func sheetName(dim domain.Dimension) string {
	return "By " + string(dim)
}

// cellValue converts an undefined statistic to an empty cell.
func cellValue(v domain.NullFloat) any {
	if !v.Defined() {
		return ""
	}
	return float64(v)
}
