package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLabelledP2P(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"plain label", "P2P: 21in", 21.0},
		{"hyphenated", "pit-to-pit 22.5 inches", 22.5},
		{"spelled out", "Pit to pit 20\"", 20.0},
		{"armpit spelling", "armpit to armpit 19", 19.0},
		{"chest synonym", "Chest - 23in", 23.0},
		{"across chest", "across chest: 21.5", 21.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Extract(tt.text)
			require.NotNil(t, m.P2P)
			assert.InDelta(t, tt.want, *m.P2P, 0.001)
		})
	}
}

func TestExtractLabelledLength(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"plain", "length 27in", 27.0},
		{"back length", "Back length: 28.5", 28.5},
		{"shoulder to hem", "shoulder to hem 29\"", 29.0},
		{"hps to hem", "HPS to hem 26", 26.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Extract(tt.text)
			require.NotNil(t, m.Length)
			assert.InDelta(t, tt.want, *m.Length, 0.001)
		})
	}
}

func TestExtractFractions(t *testing.T) {
	m := Extract("pit to pit 27 1/2 in, length 30 1/4")
	require.NotNil(t, m.P2P)
	require.NotNil(t, m.Length)
	assert.InDelta(t, 27.5, *m.P2P, 0.001)
	assert.InDelta(t, 30.25, *m.Length, 0.001)
}

func TestExtractCentimeterConversion(t *testing.T) {
	m := Extract("p2p 56cm")
	require.NotNil(t, m.P2P)
	assert.InDelta(t, 56.0/2.54, *m.P2P, 0.001)
}

func TestExtractAssumesInchesWithoutUnit(t *testing.T) {
	m := Extract("width 21")
	require.NotNil(t, m.P2P)
	assert.InDelta(t, 21.0, *m.P2P, 0.001)
}

func TestExtractFirstOccurrenceWins(t *testing.T) {
	m := Extract("p2p 21in ... also p2p 25in somewhere else")
	require.NotNil(t, m.P2P)
	assert.InDelta(t, 21.0, *m.P2P, 0.001)
}

func TestExtractDimensionPair(t *testing.T) {
	m := Extract("measures 29 x 22 flat")
	require.NotNil(t, m.P2P)
	require.NotNil(t, m.Length)
	// Smaller value of a WxL pair is the width.
	assert.InDelta(t, 22.0, *m.P2P, 0.001)
	assert.InDelta(t, 29.0, *m.Length, 0.001)
}

func TestExtractLabelledBeatsPair(t *testing.T) {
	m := Extract("pit to pit 20in, tag says 29 x 22")
	require.NotNil(t, m.P2P)
	assert.InDelta(t, 20.0, *m.P2P, 0.001)
}

func TestExtractLineFallback(t *testing.T) {
	// Label and value separated by more than the near-label gap allows.
	m := Extract("length measured flat is about 27in")
	require.NotNil(t, m.Length)
	assert.InDelta(t, 27.0, *m.Length, 0.001)
}

func TestExtractNothing(t *testing.T) {
	tests := []string{
		"",
		"no measurements here",
		"great condition, size L, ships fast",
	}
	for _, text := range tests {
		m := Extract(text)
		assert.Nil(t, m.P2P, "text: %q", text)
		assert.Nil(t, m.Length, "text: %q", text)
	}
}

func TestExtractOneFieldOnly(t *testing.T) {
	m := Extract("pit to pit 25in")
	require.NotNil(t, m.P2P)
	assert.InDelta(t, 25.0, *m.P2P, 0.001)
	assert.Nil(t, m.Length)
}

func TestExtractMultiline(t *testing.T) {
	m := Extract("Vintage tee\nP2P: 21in\nLength: 28in\nNo flaws")
	require.NotNil(t, m.P2P)
	require.NotNil(t, m.Length)
	assert.InDelta(t, 21.0, *m.P2P, 0.001)
	assert.InDelta(t, 28.0, *m.Length, 0.001)
}

func TestExtractCurlyQuoteUnits(t *testing.T) {
	m := Extract("p2p 21”")
	require.NotNil(t, m.P2P)
	assert.InDelta(t, 21.0, *m.P2P, 0.001)
}

func TestToInches(t *testing.T) {
	tests := []struct {
		num  string
		unit string
		want float64
	}{
		{"21", "", 21.0},
		{"21.5", "in", 21.5},
		{"27 1/2", "", 27.5},
		{"1/2", "", 0.5},
		{"50.8", "cm", 20.0},
		{"22", "\"", 22.0},
	}
	for _, tt := range tests {
		got, ok := toInches(tt.num, tt.unit)
		require.True(t, ok, "num=%q unit=%q", tt.num, tt.unit)
		assert.InDelta(t, tt.want, got, 0.001)
	}

	_, ok := toInches("", "")
	assert.False(t, ok)
	_, ok = toInches("x", "")
	assert.False(t, ok)
}
