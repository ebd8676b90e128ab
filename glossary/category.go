package glossary

import (
	"fmt"
	"strings"
)

// Category classifies a glossary entry. The set is closed.
type Category string

const (
	CategoryAlert       Category = "alert"
	CategoryCondition   Category = "condition"
	CategoryMeasurement Category = "measurement"
	CategoryDevice      Category = "device"
	CategoryMedication  Category = "medication"
)

// categoryOrder is the display priority, alerts first.
var categoryOrder = []Category{
	CategoryAlert,
	CategoryCondition,
	CategoryMeasurement,
	CategoryDevice,
	CategoryMedication,
}

var categoryPriority = map[Category]int{
	CategoryAlert:       0,
	CategoryCondition:   1,
	CategoryMeasurement: 2,
	CategoryDevice:      3,
	CategoryMedication:  4,
}

// Priority returns the sort rank of c. ok is false for a category outside
// the closed enumeration.
func (c Category) Priority() (rank int, ok bool) {
	rank, ok = categoryPriority[c]
	return rank, ok
}

// Valid reports whether c belongs to the closed enumeration.
func (c Category) Valid() bool {
	_, ok := categoryPriority[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}

// AllCategories returns every category in priority order.
func AllCategories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory converts s (case-insensitive, surrounding spaces ignored)
// into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// CategoryInfo is the display metadata for a category.
type CategoryInfo struct {
	Category    Category `json:"category" yaml:"category"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
}

// DefaultCategoryInfo returns the built-in title and description for c.
func DefaultCategoryInfo(c Category) CategoryInfo {
	switch c {
	case CategoryMeasurement:
		return CategoryInfo{Category: c, Title: "Measurements & Values", Description: "Numbers and readings from your device and tests"}
	case CategoryCondition:
		return CategoryInfo{Category: c, Title: "Heart Conditions", Description: "Medical conditions related to your heart"}
	case CategoryDevice:
		return CategoryInfo{Category: c, Title: "Device Terms", Description: "Information about your cardiac device"}
	case CategoryMedication:
		return CategoryInfo{Category: c, Title: "Medications", Description: "Common heart failure medications"}
	case CategoryAlert:
		return CategoryInfo{Category: c, Title: "Important Alerts", Description: "Critical findings that need attention"}
	}
	return CategoryInfo{Category: c, Title: string(c)}
}
