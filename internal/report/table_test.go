package report

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpaddy/advisor/pkg/domain"
)

func TestHistory(t *testing.T) {
	yield := 4200.0
	entries := []domain.PredictionHistoryEntry{
		{ID: 7, Temperature: 28, SoilPH: 6.5, Rainfall: 120, FieldArea: 0.5, PredictedYield: &yield, HarvestingDate: "2025-03-14", CreatedAt: "2025-01-01 10:00:00"},
		{ID: 3, Temperature: 30.5, SoilPH: 5, Rainfall: 0, FieldArea: 2},
	}

	got := History(entries)
	want := [][]string{
		{"1", "28", "6.5", "120", "0.5", "4200", "2025-03-14", "2025-01-01 10:00:00"},
		{"2", "30.5", "5", "0", "2", "N/A", "N/A", "N/A"},
	}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("History rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, HistoryHeaders, got.Headers)
}

func TestHistoryEmpty(t *testing.T) {
	got := History(nil)
	assert.NotNil(t, got.Rows)
	assert.Empty(t, got.Rows)
}

func TestUsers(t *testing.T) {
	got := Users([]domain.User{
		{ID: 1, Email: "admin@example.com", Role: domain.RoleAdmin},
		{ID: 2, Email: "farmer@example.com", Role: domain.RoleUser},
	})
	want := [][]string{
		{"1", "admin@example.com", "admin"},
		{"2", "farmer@example.com", "user"},
	}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("Users rows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, Users([]domain.User{{ID: 1, Email: "admin@example.com", Role: domain.RoleAdmin}})))

	out := buf.String()
	assert.Contains(t, out, "admin@example.com")
	assert.Contains(t, out, "admin")
}
