package catalog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLoads(t *testing.T) {
	idx, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 389, idx.Len())

	sofa, ok := idx.Lookup("Sofa - 3 Seater")
	require.True(t, ok)
	assert.Equal(t, 350.0, sofa.Weight)
	assert.Equal(t, 50.0, sofa.Volume)
	assert.Nil(t, sofa.Handling)
	assert.Nil(t, sofa.Surcharge)

	armoire, ok := idx.Lookup("2-door armoire")
	require.True(t, ok)
	require.NotNil(t, armoire.Handling)
	assert.Equal(t, "disassembly/reassembly", *armoire.Handling)
}

func TestDefaultIsShared(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b, err := Default()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestResolveExactMatch(t *testing.T) {
	idx, err := Default()
	require.NoError(t, err)

	for _, q := range []string{"Dresser - Double", "  dresser - double ", "DRESSER - DOUBLE"} {
		it, confidence, err := idx.Resolve(q)
		require.NoError(t, err)
		assert.Equal(t, "Dresser - Double", it.Name)
		assert.Equal(t, 1.0, confidence)
	}
}

func TestResolveFuzzyMatch(t *testing.T) {
	idx, err := Default()
	require.NoError(t, err)

	cases := []struct {
		query string
		want  string
		min   float64
	}{
		{"sofa 3 seater", "Sofa - 3 Seater", 0.9},
		{"dresser double", "Dresser - Double", 0.9},
		{"queen mattress", "Bed Queen - Mattress", 0.8},
		{"grandfather clock", "Clock - Grandfather", 0.6},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			it, confidence, err := idx.Resolve(tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.want, it.Name)
			assert.GreaterOrEqual(t, confidence, tc.min)
			assert.Less(t, confidence, 1.0)
		})
	}
}

func TestResolveAlwaysAnswers(t *testing.T) {
	idx, err := Default()
	require.NoError(t, err)

	it, confidence, err := idx.Resolve("xyz")
	require.NoError(t, err)
	assert.NotEmpty(t, it.Name)
	assert.GreaterOrEqual(t, confidence, 0.0)
	assert.Less(t, confidence, 0.5)
}

func TestResolveTieGoesToFirstKey(t *testing.T) {
	idx := NewIndex([]Item{{Name: "Beta", Weight: 2}, {Name: "Alpha", Weight: 1}})

	it, confidence, err := idx.Resolve("zzz")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", it.Name)
	assert.Equal(t, 0.0, confidence)
}

func TestResolveEmptyCatalog(t *testing.T) {
	idx := NewIndex(nil)
	_, _, err := idx.Resolve("sofa")
	assert.ErrorIs(t, err, ErrCatalogEmpty)

	idx, err = Parse("Name\tVolume\tWeight\tHandling\tSurcharge\n")
	require.NoError(t, err)
	_, _, err = idx.Resolve("sofa")
	assert.ErrorIs(t, err, ErrCatalogEmpty)
}

func TestParse(t *testing.T) {
	tsv := "Name\tVolume\tWeight\tHandling\tSurcharge\n" +
		"Piano - Upright\t60\t420 lbs\t\tstairs\n" +
		"broken row\n" +
		"Crate\t\t\t\t\n" +
		"Desk - Large\t30\t210\tdisassembly/reassembly\t\n"

	idx, err := Parse(tsv)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	piano, ok := idx.Lookup("piano - upright")
	require.True(t, ok)
	assert.Equal(t, 420.0, piano.Weight)
	assert.Nil(t, piano.Handling)
	require.NotNil(t, piano.Surcharge)
	assert.Equal(t, "stairs", *piano.Surcharge)

	crate, ok := idx.Lookup("Crate")
	require.True(t, ok)
	assert.Zero(t, crate.Weight)
	assert.Zero(t, crate.Volume)
}

func TestParseRejectsBadVolume(t *testing.T) {
	_, err := Parse("Name\tVolume\tWeight\nChair\tlots\t10\n")
	assert.Error(t, err)
}

func TestNewIndexLaterDuplicateWins(t *testing.T) {
	idx := NewIndex([]Item{{Name: "Chair", Weight: 10}, {Name: "CHAIR", Weight: 12}})
	assert.Equal(t, 1, idx.Len())
	it, ok := idx.Lookup("chair")
	require.True(t, ok)
	assert.Equal(t, 12.0, it.Weight)
}

func TestResolveConcurrentReads(t *testing.T) {
	idx, err := Default()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			it, _, err := idx.Resolve("sofa 3 seater")
			assert.NoError(t, err)
			assert.Equal(t, "Sofa - 3 Seater", it.Name)
		}()
	}
	wg.Wait()
}
