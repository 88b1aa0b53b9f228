package ball

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// calcThreshold splits the brightnesses into a dark and a bright class by
// maximising the between-class variance (Otsu). Only non-empty histogram bins
// are candidate split points. The threshold lies halfway between the
// brightest dark value and the darkest bright value; dark means b <= threshold.
func calcThreshold(brightnesses []int) int {
	if len(brightnesses) == 0 {
		return 0
	}

	var hist [256]int
	total, sum := 0, 0
	for _, b := range brightnesses {
		b = clampByte(b)
		hist[b]++
		total++
		sum += b
	}

	var bins []int
	for b, n := range hist {
		if n > 0 {
			bins = append(bins, b)
		}
	}
	if len(bins) == 1 {
		return bins[0]
	}

	best, bestVariance := 0, -1.0
	darkCount, darkSum := 0, 0
	// A split after bins[i] puts bins[0..i] into the dark class.
	for i := 0; i < len(bins)-1; i++ {
		b := bins[i]
		darkCount += hist[b]
		darkSum += b * hist[b]
		brightCount := total - darkCount
		meanDark := float64(darkSum) / float64(darkCount)
		meanBright := float64(sum-darkSum) / float64(brightCount)
		d := meanBright - meanDark
		variance := float64(darkCount) * float64(brightCount) * d * d
		if variance > bestVariance {
			best, bestVariance = i, variance
		}
	}
	return (bins[best] + bins[best+1]) / 2
}

// checkContrast reports whether both classes are populated and their means
// differ by at least minContrast.
func checkContrast(brightnesses []int, threshold int, minContrast float64) (contrast float64, ok bool) {
	var dark, bright []float64
	for _, b := range brightnesses {
		if b <= threshold {
			dark = append(dark, float64(b))
		} else {
			bright = append(bright, float64(b))
		}
	}
	if len(dark) == 0 || len(bright) == 0 {
		return 0, false
	}
	contrast = stat.Mean(bright, nil) - stat.Mean(dark, nil)
	return contrast, contrast >= minContrast
}

func clampByte(b int) int {
	return int(math.Max(0, math.Min(255, float64(b))))
}
