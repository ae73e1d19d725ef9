package reference

// HSVRange holds expected [low, high] bounds per HSV channel.
type HSVRange struct {
	H [2]float64 `json:"h"`
	S [2]float64 `json:"s"`
	V [2]float64 `json:"v"`
}

// Profile is the comparison baseline for one food name: the visual ranges a
// fresh sample should fall into, plus the textual spoilage signals a vision
// collaborator should look for.
type Profile struct {
	HSVRange           HSVRange   `json:"hsv_range"`
	BrightnessRange    [2]float64 `json:"brightness_range"`
	VibrancyRange      [2]float64 `json:"vibrancy_range"`
	SpoilageIndicators []string   `json:"spoilage_indicators"`
	ShelfLifeDays      float64    `json:"shelf_life"`
}

// DefaultProfile is the fail-soft baseline used when the collaborator cannot
// supply one. The ranges are wide open so comparisons against it never flag
// a food as out-of-range on their own.
func DefaultProfile() Profile {
	return Profile{
		HSVRange: HSVRange{
			H: [2]float64{0, 360},
			S: [2]float64{0, 100},
			V: [2]float64{0, 100},
		},
		BrightnessRange:    [2]float64{0, 255},
		VibrancyRange:      [2]float64{0, 100},
		SpoilageIndicators: []string{"unusual color", "mold", "discoloration"},
		ShelfLifeDays:      7,
	}
}
