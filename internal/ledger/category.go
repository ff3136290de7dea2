package ledger

import "fmt"

// Category is the prediction direction: top (outperform) or worst
// (underperform). Each category owns five fixed slots in an account.
type Category uint8

const (
	CategoryTop Category = iota
	CategoryWorst
)

const SlotsPerCategory = 5

func (c Category) String() string {
	if c == CategoryWorst {
		return "worst"
	}
	return "top"
}

// Flag is the on-wire category discriminant (0 = top, 1 = worst).
func (c Category) Flag() uint8 {
	return uint8(c)
}

func ParseCategory(raw string) (Category, error) {
	switch raw {
	case "top":
		return CategoryTop, nil
	case "worst":
		return CategoryWorst, nil
	}
	return CategoryTop, fmt.Errorf("unknown category %q", raw)
}

func Categories() []Category {
	return []Category{CategoryTop, CategoryWorst}
}
