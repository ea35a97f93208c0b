package models

// -----------------------------------------------------------------------------
// Realtime wire entities (streaming endpoint)
// -----------------------------------------------------------------------------

// MSubscribeMessage is the outbound l1-subscription control frame.
type MSubscribeMessage struct {
	Type         string   `json:"type"`
	ID           string   `json:"id"`
	InstrumentID string   `json:"instrumentId"`
	Provider     string   `json:"provider"`
	Subscribe    bool     `json:"subscribe"`
	Kinds        []string `json:"kinds"`
}

// -----------------------------------------------------------------------------

// MLastTick is the "last" block of an l1-update frame.
type MLastTick struct {
	Timestamp string  `json:"timestamp"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"changePct"`
}

// -----------------------------------------------------------------------------

// MRealTimeMessage is an inbound frame, discriminated by Type.
// Only "l1-update" is consumed; other types are dropped.
type MRealTimeMessage struct {
	Type         string    `json:"type"`
	InstrumentID string    `json:"instrumentId"`
	Provider     string    `json:"provider"`
	Last         MLastTick `json:"last"`
}

const RealTimeMessageTypeL1Update = "l1-update"
