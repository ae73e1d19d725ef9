package shelflife

import "strings"

// Status is the outcome of the rule-based shelf-life check.
type Status string

const (
	StatusGood          Status = "Good"
	StatusCheckManually Status = "Check Manually"
	StatusSpoiled       Status = "Spoiled"
)

// Verdict carries the category flags and the derived safe-consumption window.
type Verdict struct {
	IsMeat       bool    `json:"is_meat"`
	IsDairy      bool    `json:"is_dairy"`
	IsFried      bool    `json:"is_fried"`
	IsRiceBased  bool    `json:"is_rice_based"`
	MaxSafeHours float64 `json:"max_safe_hours"`
	Status       Status  `json:"status"`
}

// categoryKeywords drive substring matching against the food name. A name may
// land in several categories at once.
var categoryKeywords = map[string][]string{
	"meat":  {"chicken", "mutton", "fish", "egg", "prawn", "beef"},
	"dairy": {"paneer", "milk", "cheese", "cream", "butter", "lassi", "yogurt", "curd"},
	"fried": {"samosa", "vada", "pakora", "bhaji"},
	"rice":  {"rice", "biryani", "pulao", "fried rice", "chawal"},
}

const roomTemp = "room temp"

// Classify estimates how long the food stays safe and compares the elapsed
// time against that window. Pure and deterministic; storage values other than
// "room temp" all mean refrigerated-or-better, which is deliberate rather than
// an enum to validate.
func Classify(foodName, mealType string, hoursOld float64, storage string) Verdict {
	food := strings.ToLower(foodName)
	mealType = strings.ToLower(mealType)
	storage = strings.ToLower(storage)

	v := Verdict{
		IsMeat:      matchesAny(food, categoryKeywords["meat"]),
		IsDairy:     matchesAny(food, categoryKeywords["dairy"]),
		IsFried:     matchesAny(food, categoryKeywords["fried"]),
		IsRiceBased: matchesAny(food, categoryKeywords["rice"]),
	}

	atRoomTemp := storage == roomTemp

	maxSafeHours := 24.0
	if atRoomTemp {
		maxSafeHours = 4
	}

	switch mealType {
	case "breakfast":
		maxSafeHours = pick(atRoomTemp, 3, 18)
	case "lunch", "dinner":
		maxSafeHours = pick(atRoomTemp, 7, 24)
	case "snacks":
		maxSafeHours = pick(atRoomTemp, 9, 36)
	}

	// Perishability adjustments are cumulative
	if v.IsMeat {
		maxSafeHours -= 2
	}
	if v.IsDairy {
		maxSafeHours -= 1
	}
	if v.IsFried {
		maxSafeHours -= 1
	}
	if v.IsRiceBased && atRoomTemp {
		maxSafeHours -= 0.5
	}

	v.MaxSafeHours = maxSafeHours

	switch {
	case hoursOld > maxSafeHours:
		v.Status = StatusSpoiled
	case hoursOld >= maxSafeHours*0.8:
		v.Status = StatusCheckManually
	default:
		v.Status = StatusGood
	}
	return v
}

func matchesAny(food string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(food, kw) {
			return true
		}
	}
	return false
}

func pick(atRoomTemp bool, roomHours, otherHours float64) float64 {
	if atRoomTemp {
		return roomHours
	}
	return otherHours
}
