package search

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitseek/fitseek/internal/types"
)

func TestMarshalEventCarriesType(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		kind  EventKind
	}{
		{"hello", HelloEvent{SearchID: "s1", Timestamp: time.Now()}, EventHello},
		{"meta", MetaEvent{SearchID: "s1", Links: 12, Seller: "acme"}, EventMeta},
		{"progress", ProgressEvent{SearchID: "s1", Phase: "scanning", Processed: 3, Total: 10}, EventProgress},
		{"cancelled", CancelledEvent{SearchID: "s1"}, EventCancelled},
		{"done", DoneEvent{SearchID: "s1"}, EventDone},
		{"error", ErrorEvent{SearchID: "s1", Message: "boom"}, EventError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalEvent(tt.event)
			require.NoError(t, err)

			var decoded map[string]any
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, string(tt.kind), decoded["type"])
			assert.Equal(t, string(tt.kind), string(tt.event.Kind()))
		})
	}
}

func TestMarshalMatchEvent(t *testing.T) {
	listing := types.Listing{
		URL:         "https://www.depop.com/products/acme-tee/",
		Price:       "$45.00",
		Description: "Pit to pit 21in",
	}

	data, err := MarshalEvent(MatchEvent{
		SearchID: "s1",
		Item: types.MatchResult{
			Listing:     listing,
			Measurement: types.Measurement{P2P: types.Float64Ptr(21)},
		},
		Seller: "acme",
	})
	require.NoError(t, err)

	var decoded struct {
		Type   string `json:"type"`
		Seller string `json:"seller"`
		Item   struct {
			Listing struct {
				URL   string `json:"url"`
				Price string `json:"price"`
			} `json:"listing"`
			Measurement struct {
				P2P *float64 `json:"p2p"`
			} `json:"measurement"`
		} `json:"item"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "match", decoded.Type)
	assert.Equal(t, "acme", decoded.Seller)
	assert.Equal(t, listing.URL, decoded.Item.Listing.URL)
	assert.Equal(t, "$45.00", decoded.Item.Listing.Price)
	require.NotNil(t, decoded.Item.Measurement.P2P)
	assert.Equal(t, 21.0, *decoded.Item.Measurement.P2P)
}

func TestMarshalProgressKeepsZeroCounters(t *testing.T) {
	data, err := MarshalEvent(ProgressEvent{SearchID: "s1", Phase: "landing"})
	require.NoError(t, err)

	assert.Contains(t, string(data), `"processed":0`)
	assert.Contains(t, string(data), `"total":0`)
	assert.Contains(t, string(data), `"matches":0`)
}
