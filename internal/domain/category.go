// internal/domain/category.go
package domain

// EnergyCategory is the derived classification of an energy value.
type EnergyCategory string

const (
	EnergyLow     EnergyCategory = "Low Energy"
	EnergyMedium  EnergyCategory = "Medium Energy"
	EnergyHigh    EnergyCategory = "High Energy"
	EnergyInvalid EnergyCategory = "Invalid" // Outside 1..10, never folded into a bucket
)

// EnergyCategories lists the categories in display order.
var EnergyCategories = []EnergyCategory{EnergyLow, EnergyMedium, EnergyHigh, EnergyInvalid}

// IsValid reports whether c is one of the three real buckets.
func (c EnergyCategory) IsValid() bool {
	switch c {
	case EnergyLow, EnergyMedium, EnergyHigh:
		return true
	}
	return false
}
