package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number decodes a JSON number, a numeric string, or anything else as invalid.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*n = Number{Value: v, Valid: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

type Dashboard struct {
	NumberOfActiveDevices int           `json:"numberOfActiveDevices"`
	NumberOfLocations     int           `json:"numberOfLocations"`
	StorageUsage          Number        `json:"storageUsage"`
	Campaigns             []CampaignRef `json:"campaigns"`
}

type UsageTier string

const (
	UsageOK       UsageTier = "ok"
	UsageWarning  UsageTier = "warning"
	UsageCritical UsageTier = "critical"
)

// StoragePercent treats values <= 1 as a fraction, then clamps to [0, 100].
// Missing or non-numeric input yields 0.
func StoragePercent(raw Number) float64 {
	if !raw.Valid {
		return 0
	}
	pct := raw.Value
	if pct <= 1 {
		pct *= 100
	}
	return math.Max(0, math.Min(100, pct))
}

func StorageTier(percent float64) UsageTier {
	switch {
	case percent >= 85:
		return UsageCritical
	case percent >= 60:
		return UsageWarning
	default:
		return UsageOK
	}
}
