package models

// MMapping is a per-provider symbol/exchange pair.
type MMapping struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
}

// MInstrument represents one tradeable instrument as returned by the
// instruments endpoint. Immutable once fetched; identified by ID.
type MInstrument struct {
	ID           string              `json:"id"`
	Symbol       string              `json:"symbol"`
	Kind         string              `json:"kind"`
	Exchange     string              `json:"exchange"`
	Description  string              `json:"description"`
	TickSize     float64             `json:"tickSize"`
	Currency     string              `json:"currency"`
	BaseCurrency string              `json:"baseCurrency"`
	Mappings     map[string]MMapping `json:"mappings"`
}
