// internal/domain/reference.go
package domain

// DefaultReferenceTitle is shown when the reference resource has no chart_title.
const DefaultReferenceTitle = "Energy improvement relative to control group"

// StudyEffect is one bar of the reference chart.
type StudyEffect struct {
	Intensity  string  `json:"intensity"`  // Cardio intensity label
	EffectSize float64 `json:"effectSize"` // Energy improvement effect size (Cohen's d)
}

// ReferenceDataset is the static study data shown next to the survey results.
// Effects keep the order in which they appear in the source document.
type ReferenceDataset struct {
	ChartTitle string        `json:"chartTitle"`
	Effects    []StudyEffect `json:"effects"`
}

// IsEmpty reports whether there is nothing to chart.
func (r ReferenceDataset) IsEmpty() bool {
	return len(r.Effects) == 0
}
