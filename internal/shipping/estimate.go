package shipping

import "strings"

// Line is the minimal cart view the estimator needs. Category drives the
// per-item weight/size heuristic; unknown products degrade to the default
// profile instead of failing the quote.
type Line struct {
	ProductID    int64
	Qty          int
	CategoryName string
	UnitPrice    Money
	FreeShipping bool
}

type profile struct {
	weightGrams int
	lengthCM    int
	widthCM     int
	heightCM    int
}

var (
	shirtProfile   = profile{weightGrams: 300, lengthCM: 30, widthCM: 25, heightCM: 5}
	shortsProfile  = profile{weightGrams: 250, lengthCM: 25, widthCM: 20, heightCM: 5}
	defaultProfile = profile{weightGrams: 400, lengthCM: 30, widthCM: 25, heightCM: 10}
)

func profileFor(category string) profile {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "remera") || strings.Contains(c, "shirt"):
		return shirtProfile
	case strings.Contains(c, "short") || strings.Contains(c, "bermuda"):
		return shortsProfile
	default:
		return defaultProfile
	}
}

// Estimate folds cart lines into one parcel: weights accumulate, dimensions
// take the per-axis maximum. An empty cart yields the default profile so a
// postal-only quote still works.
func Estimate(lines []Line) Parcel {
	if len(lines) == 0 {
		return Parcel{
			WeightGrams: defaultProfile.weightGrams,
			LengthCM:    defaultProfile.lengthCM,
			WidthCM:     defaultProfile.widthCM,
			HeightCM:    defaultProfile.heightCM,
		}
	}
	var p Parcel
	for _, l := range lines {
		prof := profileFor(l.CategoryName)
		qty := l.Qty
		if qty < 1 {
			qty = 1
		}
		p.WeightGrams += prof.weightGrams * qty
		if prof.lengthCM > p.LengthCM {
			p.LengthCM = prof.lengthCM
		}
		if prof.widthCM > p.WidthCM {
			p.WidthCM = prof.widthCM
		}
		// Height stacks like weight: garments pile up.
		p.HeightCM += prof.heightCM * qty
	}
	return p
}
