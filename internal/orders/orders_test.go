package orders

import (
	"context"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movequote/internal/db"
)

func TestNewRef(t *testing.T) {
	re := regexp.MustCompile(`^ORD-[0-9A-F]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ref := NewRef()
		assert.Regexp(t, re, ref)
		seen[ref] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestNoteText(t *testing.T) {
	n := Note{
		Name:          "Pat Doe",
		Phone:         "+15550100",
		Email:         "pat@example.com",
		MoveDate:      "2026-11-02",
		Locations:     "12 Elm St -> 40 Oak Ave",
		Stairwells:    "origin 2nd floor, elevator at destination",
		ItemDetails:   "Sofa - 3 Seater x1",
		EstimatePrice: 1142.5,
	}
	text := n.Text()
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "Name: Pat Doe", lines[0])
	assert.Equal(t, "Estimate price: 1142.50", lines[7])
}

func TestRepositoryIntegration(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
		return
	}

	pool, err := db.NewPool(context.Background(), dbURL)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, db.EnsureSchema(context.Background(), pool))

	repo := NewRepository(pool)
	created, err := repo.Create(context.Background(), Note{Name: "Pat Doe", Phone: "+15550100", MoveDate: "2026-11-02"})
	require.NoError(t, err)
	assert.Equal(t, StatusNewLead, created.Status)

	got, err := repo.GetByRef(context.Background(), strings.ToLower(created.Ref))
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Pat Doe", got.CustomerName)
	assert.Contains(t, got.Notes, "Phone: +15550100")

	_, err = repo.GetByRef(context.Background(), "ORD-00000000")
	assert.ErrorIs(t, err, ErrNotFound)
}
