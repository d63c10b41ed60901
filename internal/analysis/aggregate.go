package analysis

import "github.com/stepsurvey/steps-survey/internal/domain"

// DefaultStepThreshold splits low-exercise days from high-exercise days.
const DefaultStepThreshold = 6000

// Categorize classifies an energy value. Values outside 1..10 are Invalid.
func Categorize(energy int) domain.EnergyCategory {
	switch {
	case energy >= 1 && energy <= 3:
		return domain.EnergyLow
	case energy >= 4 && energy <= 6:
		return domain.EnergyMedium
	case energy >= 7 && energy <= 10:
		return domain.EnergyHigh
	}
	return domain.EnergyInvalid
}

// BucketBySteps partitions rows into steps < threshold and steps >= threshold,
// each in input order.
func BucketBySteps(subset domain.EntryTable, threshold int) (low, high domain.EntryTable) {
	low = make(domain.EntryTable, 0)
	high = make(domain.EntryTable, 0)
	for _, e := range subset {
		if e.Steps < threshold {
			low = append(low, e)
		} else {
			high = append(high, e)
		}
	}
	return low, high
}

// Frequency counts the energy categories in group. Categories that do not
// occur are absent from the map.
func Frequency(group domain.EntryTable) map[domain.EnergyCategory]int {
	counts := make(map[domain.EnergyCategory]int)
	for _, e := range group {
		counts[Categorize(e.Energy)]++
	}
	return counts
}

// CategoryCount is one slice of a pie chart.
type CategoryCount struct {
	Category domain.EnergyCategory `json:"category"`
	Count    int                   `json:"count"`
}

// Ordered lists the non-zero counts of freq in display order.
func Ordered(freq map[domain.EnergyCategory]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(freq))
	for _, c := range domain.EnergyCategories {
		if n := freq[c]; n > 0 {
			out = append(out, CategoryCount{Category: c, Count: n})
		}
	}
	return out
}
