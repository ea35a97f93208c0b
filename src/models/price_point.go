package models

// MPricePoint is one tick of the realtime stream in chart-series form.
type MPricePoint struct {
	TimestampMillis int64   `json:"timestamp"`
	Price           float64 `json:"price"`
}
