package pricefeed

import "testing"

func TestParseMarketChart(t *testing.T) {
	body := []byte(`{"prices":[[1700000000000,42000.5],[1700003600000.0,42100.25]],"market_caps":[],"total_volumes":[]}`)
	points, err := parseMarketChart(body)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].TimestampMS != 1700000000000 || points[0].Price != 42000.5 {
		t.Fatalf("first point = %+v", points[0])
	}
	if points[1].TimestampMS != 1700003600000 || points[1].Price != 42100.25 {
		t.Fatalf("second point = %+v", points[1])
	}
}

func TestParseMarketChart_SkipsMalformedPairs(t *testing.T) {
	body := []byte(`{"prices":[[1700000000000],[1700003600000,99.5]]}`)
	points, err := parseMarketChart(body)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(points) != 1 || points[0].Price != 99.5 {
		t.Fatalf("points = %+v", points)
	}
}

func TestParseMarketChart_RejectsGarbage(t *testing.T) {
	if _, err := parseMarketChart([]byte(`[]`)); err == nil {
		t.Fatalf("non-object body accepted")
	}
}
