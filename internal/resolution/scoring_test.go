package resolution

import (
	"math"
	"testing"

	"alphapicks/internal/ledger"
)

func TestActualChangePct(t *testing.T) {
	cases := []struct {
		entry, resolution, want float64
	}{
		{100, 110, 10},
		{100, 90, -10},
		{200, 200, 0},
		{50, 75, 50},
	}
	for _, tc := range cases {
		got := ActualChangePct(tc.entry, tc.resolution)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ActualChangePct(%v, %v) = %v, want %v", tc.entry, tc.resolution, got, tc.want)
		}
	}
}

func TestScore_Tiers(t *testing.T) {
	cases := []struct {
		name       string
		category   ledger.Category
		predicted  float64
		actual     float64
		wantPoints uint64
		wantLabel  string
	}{
		{"exact match", ledger.CategoryTop, 10, 10, 1000, LabelPerfect},
		{"within one point", ledger.CategoryTop, 10, 11, 1000, LabelPerfect},
		{"within two points", ledger.CategoryTop, 10, 12, 750, LabelExcellent},
		{"within five points", ledger.CategoryTop, 10, 12.5, 500, LabelGreat},
		{"within ten points", ledger.CategoryTop, 10, 19, 250, LabelGood},
		{"within twenty points", ledger.CategoryTop, 10, 28, 100, LabelFair},
		{"beyond twenty points", ledger.CategoryTop, 10, 31, 50, LabelCorrectDirection},
		{"worst pick magnitudes compared", ledger.CategoryWorst, -8, -8.5, 1000, LabelPerfect},
		{"worst pick loose", ledger.CategoryWorst, -5, -40, 50, LabelCorrectDirection},
	}
	for _, tc := range cases {
		points, label := Score(tc.category, tc.predicted, tc.actual)
		if points != tc.wantPoints || label != tc.wantLabel {
			t.Errorf("%s: Score(%v, %v, %v) = (%d, %q), want (%d, %q)",
				tc.name, tc.category, tc.predicted, tc.actual, points, label, tc.wantPoints, tc.wantLabel)
		}
	}
}

func TestScore_WrongDirection(t *testing.T) {
	if points, label := Score(ledger.CategoryTop, 5, -3); points != WrongDirectionPoints || label != LabelWrongDirection {
		t.Fatalf("top pick with loss: got (%d, %q)", points, label)
	}
	if points, label := Score(ledger.CategoryWorst, -5, 3); points != WrongDirectionPoints || label != LabelWrongDirection {
		t.Fatalf("worst pick with gain: got (%d, %q)", points, label)
	}
	// Flat move counts as a gain, so it sinks a worst pick.
	if points, _ := Score(ledger.CategoryWorst, -5, 0); points != WrongDirectionPoints {
		t.Fatalf("worst pick with flat move: got %d points", points)
	}
	if _, label := Score(ledger.CategoryTop, 0, 0); label != LabelPerfect {
		t.Fatalf("top pick with flat move: got label %q", label)
	}
}
