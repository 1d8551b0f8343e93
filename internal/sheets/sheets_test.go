package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darumalabs/zashabot/internal/game"
)

func TestColumnLetterToIndex(t *testing.T) {
	tests := []struct {
		letter string
		want   int
	}{
		{"A", 1},
		{"B", 2},
		{"Z", 26},
		{"AA", 27},
		{"AB", 28},
		{"a", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ColumnLetterToIndex(tt.letter), "letter %s", tt.letter)
	}
}

func TestBuildRowIndex(t *testing.T) {
	values := [][]any{
		{"Serial"},    // row 1, header
		{"101"},       // row 2
		{" 102 "},     // row 3, needs trimming
		{},            // row 4, empty row
		{""},          // row 5, empty cell
		{103},         // row 6, numeric cell
	}

	cache, order := buildRowIndex(values, 2)

	assert.Equal(t, map[string]int{"101": 2, "102": 3, "103": 6}, cache)
	assert.Equal(t, []string{"101", "102", "103"}, order)
}

func TestBuildRowIndexSkipsHeaderRows(t *testing.T) {
	values := [][]any{
		{"should-be-skipped"},
		{"also-skipped"},
		{"201"},
	}

	cache, order := buildRowIndex(values, 3)

	assert.Equal(t, map[string]int{"201": 3}, cache)
	assert.Equal(t, []string{"201"}, order)
}

func TestCollectionUpdates(t *testing.T) {
	columns := map[string]string{
		"daruma_fox":  "F",
		"daruma_zama": "B",
	}
	cards := game.NewCollection()
	cards["Daruma Fox"] = true

	data := collectionUpdates("Sheet1", columns, 5, cards)

	// Only cards with configured columns produce updates, in CardNames order.
	require.Len(t, data, 2)
	assert.Equal(t, "Sheet1!B5", data[0].Range)
	assert.Equal(t, [][]any{{""}}, data[0].Values)
	assert.Equal(t, "Sheet1!F5", data[1].Range)
	assert.Equal(t, [][]any{{"ok"}}, data[1].Values)
}

func TestCollectionUpdatesNoColumns(t *testing.T) {
	data := collectionUpdates("Sheet1", nil, 5, game.NewCollection())
	assert.Empty(t, data)
}
