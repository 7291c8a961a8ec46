package ocr

import (
	"strconv"
	"strings"
)

// meanTSVConfidence averages the word confidences of a tesseract TSV dump.
// Returns a value in 0..1, or 0 when no word carried a confidence.
func meanTSVConfidence(tsv string) float32 {
	var sum, n float64
	confCol := -1
	for i, ln := range strings.Split(tsv, "\n") {
		cols := strings.Split(ln, "\t")
		if i == 0 {
			for j, c := range cols {
				if strings.TrimSpace(c) == "conf" {
					confCol = j
				}
			}
			continue
		}
		if confCol < 0 || len(cols) <= confCol {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cols[confCol]), 64)
		if err != nil || v < 0 {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return float32(sum / n / 100.0)
}
