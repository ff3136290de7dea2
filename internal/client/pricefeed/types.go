package pricefeed

import (
	"encoding/json"
	"fmt"
)

// PricePoint is one historical sample. TimestampMS is unix milliseconds.
type PricePoint struct {
	TimestampMS int64
	Price       float64
}

func parseMarketChart(body []byte) ([]PricePoint, error) {
	var raw struct {
		Prices [][]json.Number `json:"prices"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unknown market chart format: %w", err)
	}
	points := make([]PricePoint, 0, len(raw.Prices))
	for _, pair := range raw.Prices {
		if len(pair) < 2 {
			continue
		}
		ts, err := pair[0].Int64()
		if err != nil {
			// Some providers emit float millisecond timestamps.
			f, ferr := pair[0].Float64()
			if ferr != nil {
				continue
			}
			ts = int64(f)
		}
		price, err := pair[1].Float64()
		if err != nil {
			continue
		}
		points = append(points, PricePoint{TimestampMS: ts, Price: price})
	}
	return points, nil
}
