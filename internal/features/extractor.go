package features

import (
	"image"
	"math"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// Extractor computes visual descriptors for a decoded food image.
type Extractor interface {
	Extract(img image.Image) Features
}

// ColorCount is one entry of the dominant-color histogram.
type ColorCount struct {
	Count int    `json:"count"`
	RGB   [3]int `json:"rgb"`
}

// Features holds the numeric descriptors computed from a single image.
// Hue is averaged on the 0-360 degree scale, saturation and value on 0-100,
// brightness on the 0-255 grayscale range. The hue mean is a naive linear
// mean; it is slightly biased near the 0/360 wraparound, and downstream
// reference ranges are calibrated against exactly that computation.
type Features struct {
	AvgHSV         [3]float64   `json:"avg_hsv"`
	Brightness     float64      `json:"brightness"`
	Vibrancy       float64      `json:"vibrancy"`
	MoldPercentage float64      `json:"mold_percentage"`
	DominantColors []ColorCount `json:"dominant_colors,omitempty"`
}

// moldBands are inclusive RGB bounding boxes for suspect colors
// (blue-ish, green-ish, gray-ish). A pixel inside two bands counts twice.
var moldBands = [3][2][3]uint8{
	{{0, 0, 100}, {100, 100, 255}},
	{{0, 100, 0}, {100, 255, 100}},
	{{100, 100, 100}, {180, 180, 180}},
}

const maxDominantColors = 5

type extractor struct{}

// NewExtractor creates a feature extractor
func NewExtractor() Extractor {
	return &extractor{}
}

type colorEntry struct {
	count int
	first int // global pixel index of first occurrence, for stable tie-breaks
}

type stripResult struct {
	hueSum, satSum, valSum float64
	moldCount              int64
	colors                 map[[3]uint8]colorEntry
}

// Extract computes all descriptors in a single parallel pass over horizontal
// strips of the image.
func (e *extractor) Extract(img image.Image) Features {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return Features{}
	}
	totalPixels := width * height

	numWorkers := runtime.NumCPU()
	if height < numWorkers {
		numWorkers = height
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers // ceil division

	// Luminance per pixel and all three RGB channels stacked into one array.
	// Vibrancy is a single global standard deviation over the stacked
	// channels, not an average of per-channel deviations.
	luminance := make([]float64, totalPixels)
	stacked := make([]float64, 3*totalPixels)

	results := make(chan stripResult, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		startY := bounds.Min.Y + i*rowsPerWorker
		endY := startY + rowsPerWorker
		if i == numWorkers-1 || endY > bounds.Max.Y {
			endY = bounds.Max.Y
		}
		go func(startY, endY int) {
			defer wg.Done()

			res := stripResult{colors: make(map[[3]uint8]colorEntry)}
			for y := startY; y < endY && y < bounds.Max.Y; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					r16, g16, b16, _ := img.At(x, y).RGBA()
					r := uint8(r16 >> 8)
					g := uint8(g16 >> 8)
					b := uint8(b16 >> 8)
					idx := (y-bounds.Min.Y)*width + (x - bounds.Min.X)

					rf := float64(r)
					gf := float64(g)
					bf := float64(b)

					h, s, v := rgbToHSV(rf/255.0, gf/255.0, bf/255.0)
					res.hueSum += h
					res.satSum += s * 100
					res.valSum += v * 100

					luminance[idx] = 0.299*rf + 0.587*gf + 0.114*bf

					stacked[idx*3] = rf
					stacked[idx*3+1] = gf
					stacked[idx*3+2] = bf

					for _, band := range moldBands {
						lo, hi := band[0], band[1]
						if r >= lo[0] && r <= hi[0] &&
							g >= lo[1] && g <= hi[1] &&
							b >= lo[2] && b <= hi[2] {
							res.moldCount++
						}
					}

					key := [3]uint8{r, g, b}
					if entry, ok := res.colors[key]; ok {
						entry.count++
						res.colors[key] = entry
					} else {
						res.colors[key] = colorEntry{count: 1, first: idx}
					}
				}
			}
			results <- res
		}(startY, endY)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var hueSum, satSum, valSum float64
	var moldCount int64
	merged := make(map[[3]uint8]colorEntry)

	for res := range results {
		hueSum += res.hueSum
		satSum += res.satSum
		valSum += res.valSum
		moldCount += res.moldCount
		for key, entry := range res.colors {
			if existing, ok := merged[key]; ok {
				existing.count += entry.count
				if entry.first < existing.first {
					existing.first = entry.first
				}
				merged[key] = existing
			} else {
				merged[key] = entry
			}
		}
	}

	n := float64(totalPixels)
	return Features{
		AvgHSV: [3]float64{
			round2(hueSum / n),
			round2(satSum / n),
			round2(valSum / n),
		},
		Brightness:     round2(stat.Mean(luminance, nil)),
		Vibrancy:       round2(stat.PopStdDev(stacked, nil)),
		MoldPercentage: round2(float64(moldCount) / n * 100),
		DominantColors: topColors(merged, maxDominantColors),
	}
}

// topColors sorts the exact-count histogram by pixel count descending and
// keeps the top k. Ties keep first-encountered pixel order so repeated runs
// on the same image produce identical output.
func topColors(counts map[[3]uint8]colorEntry, k int) []ColorCount {
	type rankedColor struct {
		rgb   [3]uint8
		entry colorEntry
	}
	ranked := make([]rankedColor, 0, len(counts))
	for rgb, entry := range counts {
		ranked = append(ranked, rankedColor{rgb: rgb, entry: entry})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].entry.count != ranked[j].entry.count {
			return ranked[i].entry.count > ranked[j].entry.count
		}
		return ranked[i].entry.first < ranked[j].entry.first
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	top := make([]ColorCount, len(ranked))
	for i, rc := range ranked {
		top[i] = ColorCount{
			Count: rc.entry.count,
			RGB:   [3]int{int(rc.rgb[0]), int(rc.rgb[1]), int(rc.rgb[2])},
		}
	}
	return top
}

// rgbToHSV converts normalized RGB to HSV with hue in degrees and
// saturation/value in [0,1]
func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	v = max

	if max == 0 {
		s = 0
	} else {
		s = delta / max
	}

	if delta == 0 {
		h = 0
	} else if max == r {
		h = 60 * (((g - b) / delta) + 0)
	} else if max == g {
		h = 60 * (((b - r) / delta) + 2)
	} else {
		h = 60 * (((r - g) / delta) + 4)
	}

	if h < 0 {
		h += 360
	}

	return h, s, v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
