package domain

// Category names a rated aspect of a location. The category sets and their
// vocabularies are fixed and part of the external contract.
type Category string

// Single-valued categories: a rating carries at most one value per category.
const (
	BedSize       Category = "bedSize"
	BedComfort    Category = "bedComfort"
	CoverSize     Category = "coverSize"
	CoverComfort  Category = "coverComfort"
	PillowSize    Category = "pillowSize"
	PillowComfort Category = "pillowComfort"
)

// Multi-valued categories: a rating carries a set of zero or more values.
const (
	LightAnnoyances Category = "lightAnnoyances"
	NoiseIssues     Category = "noiseIssues"
)

var sizeValues = []string{"small", "medium", "large"}
var comfortValues = []string{"soft", "medium", "hard"}

// SingleCategories lists the single-valued categories in response order.
var SingleCategories = []Category{
	BedSize, BedComfort, CoverSize, CoverComfort, PillowSize, PillowComfort,
}

// MultiCategories lists the multi-valued categories in response order.
var MultiCategories = []Category{LightAnnoyances, NoiseIssues}

// Vocabulary maps every category to its allowed values, in canonical order.
var Vocabulary = map[Category][]string{
	BedSize:       sizeValues,
	BedComfort:    comfortValues,
	CoverSize:     sizeValues,
	CoverComfort:  comfortValues,
	PillowSize:    sizeValues,
	PillowComfort: comfortValues,
	LightAnnoyances: {
		"street lamps", "thin curtains", "no curtains", "status leds", "early sunlight",
	},
	NoiseIssues: {
		"traffic", "neighbors", "plumbing", "creaky floors", "nightlife", "airport",
	},
}

// InVocabulary reports whether value is allowed for the category.
func InVocabulary(category Category, value string) bool {
	for _, allowed := range Vocabulary[category] {
		if value == allowed {
			return true
		}
	}
	return false
}
