package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	prev := map[string]any{"status": "pending", "title": "Old", "note": nil}
	next := map[string]any{"status": "done", "title": "Old"}

	ch, changed := Diff(prev, next)
	require.True(t, changed)
	assert.Equal(t, map[string]any{"status": "pending"}, ch.Before)
	assert.Equal(t, map[string]any{"status": "done"}, ch.After)
}

func TestDiffNoChange(t *testing.T) {
	prev := map[string]any{"status": "pending", "title": "Old"}

	ch, changed := Diff(prev, map[string]any{"status": "pending", "title": "Old"})
	assert.False(t, changed)
	assert.Empty(t, ch.After)
	assert.Empty(t, ch.Before)
}

func TestDiffNewKeyAgainstMissing(t *testing.T) {
	ch, changed := Diff(map[string]any{}, map[string]any{"location": "Brno"})
	require.True(t, changed)
	assert.Nil(t, ch.Before["location"])
	assert.Equal(t, "Brno", ch.After["location"])
}

func TestToMapNormalizesValues(t *testing.T) {
	type rec struct {
		Quantity *int       `json:"quantity"`
		Start    *time.Time `json:"start"`
	}
	q := 5
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.FixedZone("", 0))

	fromRecord, err := toMap(rec{Quantity: &q, Start: &start})
	require.NoError(t, err)
	fromFields, err := toMap(map[string]any{"quantity": 5, "start": time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	_, changed := Diff(fromRecord, fromFields)
	assert.False(t, changed)
}
