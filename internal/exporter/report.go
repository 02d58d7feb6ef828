package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cinepulse/internal/config"
	"cinepulse/internal/domain"
)

// Report bundles every analysis table produced by one pipeline run.
type Report struct {
	Overview     domain.Overview                              `json:"overview"`
	Summary      domain.SummaryStats                          `json:"summary"`
	Correlations domain.CorrelationMatrix                     `json:"correlations"`
	Aggregates   map[domain.Dimension][]domain.GroupAggregate `json:"aggregates"`
}

var aggregateHeaders = []string{
	"key", "count",
	"revenue_count", "mean_revenue",
	"roi_count", "mean_roi",
	"blockbusters", "blockbuster_rate", "low_confidence",
}

func aggregateRecord(g domain.GroupAggregate) []string {
	return []string{
		g.Key, formatInt(g.Count),
		formatInt(g.RevenueCount), formatNullFloat(g.MeanRevenue),
		formatInt(g.ROICount), formatNullFloat(g.MeanROI),
		formatInt(g.Blockbusters), formatNullFloat(g.BlockbusterRate),
		formatBool(g.LowConfidence),
	}
}

// WriteAggregateCSV writes one aggregate table as by_<dimension>.csv.
func (w *CSVWriter) WriteAggregateCSV(dim domain.Dimension, groups []domain.GroupAggregate) error {
	records := make([][]string, 0, len(groups))
	for _, g := range groups {
		records = append(records, aggregateRecord(g))
	}
	return w.WriteSimpleCSV(fmt.Sprintf("by_%s.csv", dim), aggregateHeaders, records)
}

// WriteCorrelationCSV writes the correlation matrix as correlations.csv with
// field names on both axes.
func (w *CSVWriter) WriteCorrelationCSV(matrix domain.CorrelationMatrix) error {
	headers := append([]string{"field"}, matrix.Fields...)
	records := make([][]string, 0, len(matrix.Fields))
	for i, field := range matrix.Fields {
		record := make([]string, 0, len(matrix.Fields)+1)
		record = append(record, field)
		for j := range matrix.Fields {
			record = append(record, formatNullFloat(matrix.Values[i][j]))
		}
		records = append(records, record)
	}
	return w.WriteSimpleCSV("correlations.csv", headers, records)
}

// JSONWriter writes reports as indented JSON under the reports directory.
type JSONWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewJSONWriter creates a JSON report writer.
func NewJSONWriter(paths *config.Paths, logger *slog.Logger) *JSONWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONWriter{paths: paths, logger: logger}
}

// WriteJSON marshals v to name under the reports directory.
func (w *JSONWriter) WriteJSON(name string, v any) error {
	fullPath := w.paths.ReportPath(name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create reports directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}

	w.logger.Info("wrote JSON report",
		slog.String("path", fullPath),
		slog.Int("bytes", len(data)))
	return nil
}
