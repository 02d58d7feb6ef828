package exporter

import (
	"fmt"
	"strconv"

	"cinepulse/internal/domain"
)

// formatNullFloat renders a possibly-undefined statistic for CSV output.
// Undefined values become an empty cell rather than "NaN" so spreadsheet
// tools treat them as missing.
func formatNullFloat(v domain.NullFloat) string {
	if !v.Defined() {
		return ""
	}
	return fmt.Sprintf("%.4f", float64(v))
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
