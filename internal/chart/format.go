package chart

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatAmount renders v rounded to cents with comma thousands separators,
// e.g. 1234.5 -> "1,234.50".
func FormatAmount(v float64) string {
	cents := decimal.NewFromFloat(v).Round(2)
	return humanize.FormatFloat("#,###.##", cents.InexactFloat64())
}

// FormatSize renders a byte count for display, e.g. "1.2 MiB".
func FormatSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.IBytes(uint64(size))
}
