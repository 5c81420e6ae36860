package inventory

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatFileSize renders a byte count with 1000-based units and at most two
// decimals, e.g. 12500 -> "12.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	idx := int(math.Floor(math.Log(float64(bytes)) / math.Log(1000)))
	if idx >= len(sizeUnits) {
		idx = len(sizeUnits) - 1
	}
	v := float64(bytes) / math.Pow(1000, float64(idx))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[idx]
}
