// Package symbols extracts declaration names from source text with a fixed,
// ordered table of regular expressions.
//
// This is a heuristic, not a parser: every pattern runs over every input regardless
// of its language, which favours recall on mislabeled or mixed files over precision.
package symbols

// Category is the bucket a captured symbol is reported under.
type Category string

const (
	CategoryFunctions Category = "functions"
	CategoryClasses   Category = "classes"
	CategoryStructs   Category = "structs"
	CategoryTraits    Category = "traits"
	CategoryEnums     Category = "enums"
	CategoryOther     Category = "other"
)

// Categories lists every bucket in report order.
var Categories = []Category{
	CategoryFunctions,
	CategoryClasses,
	CategoryStructs,
	CategoryTraits,
	CategoryEnums,
	CategoryOther,
}

// Buckets holds the deduplicated symbols per category.
type Buckets struct {
	Functions []string `json:"functions"`
	Classes   []string `json:"classes"`
	Structs   []string `json:"structs"`
	Traits    []string `json:"traits"`
	Enums     []string `json:"enums"`
	Other     []string `json:"other"`
}

// Get returns the bucket for c.
func (b *Buckets) Get(c Category) []string {
	switch c {
	case CategoryFunctions:
		return b.Functions
	case CategoryClasses:
		return b.Classes
	case CategoryStructs:
		return b.Structs
	case CategoryTraits:
		return b.Traits
	case CategoryEnums:
		return b.Enums
	default:
		return b.Other
	}
}

func (b *Buckets) set(c Category, names []string) {
	switch c {
	case CategoryFunctions:
		b.Functions = names
	case CategoryClasses:
		b.Classes = names
	case CategoryStructs:
		b.Structs = names
	case CategoryTraits:
		b.Traits = names
	case CategoryEnums:
		b.Enums = names
	default:
		b.Other = names
	}
}

// Result is the outcome of analyzing one piece of content.
type Result struct {
	Symbols   Buckets `json:"symbols"`
	LineCount int     `json:"line_count"`
	CharCount int     `json:"char_count"`

	// Language is detected from the optional path hint. It is informational only.
	Language string `json:"language,omitempty"`
}
