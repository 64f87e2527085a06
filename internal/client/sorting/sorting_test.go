package sorting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrenko/shiftnotes/internal/models"
)

func pat(id, name string, created time.Time, archived bool) models.Patient {
	return models.Patient{ID: id, Name: name, CreatedAt: created, Archived: archived}
}

func names(patients []models.Patient) []string {
	out := make([]string, 0, len(patients))
	for _, p := range patients {
		out = append(out, p.Name)
	}
	return out
}

func TestOption_NextCycle(t *testing.T) {
	o := Default
	seen := []Option{}
	for range 4 {
		seen = append(seen, o)
		o = o.Next()
	}
	assert.Equal(t, []Option{TimeDesc, TimeAsc, AlphaAsc, AlphaDesc}, seen)
	assert.Equal(t, Default, o, "four steps return to the start")

	assert.Equal(t, TimeDesc, Option("bogus").Next(), "unknown option restarts the cycle")
}

func TestOption_Valid(t *testing.T) {
	assert.True(t, TimeDesc.Valid())
	assert.True(t, AlphaDesc.Valid())
	assert.False(t, Option("bogus").Valid())
	assert.False(t, Option("").Valid())
}

func TestPartition(t *testing.T) {
	now := time.Now()
	list := []models.Patient{
		pat("p1", "A", now, false),
		pat("p2", "B", now, true),
		pat("p3", "C", now, false),
	}

	active, archived := Partition(list)
	assert.Equal(t, []string{"A", "C"}, names(active))
	assert.Equal(t, []string{"B"}, names(archived))
}

func TestSort_Time(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	list := []models.Patient{
		pat("p1", "Mid", base.Add(time.Hour), false),
		pat("p2", "Old", base, false),
		pat("p3", "New", base.Add(2*time.Hour), false),
	}

	assert.Equal(t, []string{"New", "Mid", "Old"}, names(Sort(list, TimeDesc)))
	assert.Equal(t, []string{"Old", "Mid", "New"}, names(Sort(list, TimeAsc)))

	// input untouched
	assert.Equal(t, []string{"Mid", "Old", "New"}, names(list))
}

func TestSort_Time_LegacyIDFallback(t *testing.T) {
	list := []models.Patient{
		{ID: "1700000200000-aa", Name: "Later"},
		{ID: "1700000100000-bb", Name: "Earlier"},
		{ID: "opaque", Name: "NoStamp"},
	}

	assert.Equal(t, []string{"Earlier", "Later", "NoStamp"}, names(Sort(list, TimeAsc)))
	assert.Equal(t, []string{"Later", "Earlier", "NoStamp"}, names(Sort(list, TimeDesc)))
}

func TestSort_Alpha(t *testing.T) {
	now := time.Now()
	list := []models.Patient{
		pat("p1", "charlie", now, false),
		pat("p2", "Alice", now, false),
		pat("p3", "bob", now, false),
	}

	assert.Equal(t, []string{"Alice", "bob", "charlie"}, names(Sort(list, AlphaAsc)),
		"case must not affect ordering")
	assert.Equal(t, []string{"charlie", "bob", "Alice"}, names(Sort(list, AlphaDesc)))
}

func TestSort_Stable(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	list := []models.Patient{
		pat("p1", "Same", now, false),
		pat("p2", "Same", now, false),
	}

	sorted := Sort(list, TimeDesc)
	assert.Equal(t, "p1", sorted[0].ID)
	assert.Equal(t, "p2", sorted[1].ID)
}

func TestPreferences_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	p, err := LoadPreferences(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultPair(), p.Get("s1"), "missing entry falls back to defaults")

	require.NoError(t, p.Set("s1", Pair{Active: AlphaAsc, Archived: TimeAsc}))
	require.NoError(t, p.Set("s2", Pair{Active: TimeAsc, Archived: Default}))

	reloaded, err := LoadPreferences(dir)
	require.NoError(t, err)
	assert.Equal(t, Pair{Active: AlphaAsc, Archived: TimeAsc}, reloaded.Get("s1"))
	assert.Equal(t, Pair{Active: TimeAsc, Archived: Default}, reloaded.Get("s2"))

	require.NoError(t, reloaded.Forget("s1"))
	assert.Equal(t, DefaultPair(), reloaded.Get("s1"))
}

func TestPreferences_PartitionsAreIndependent(t *testing.T) {
	dir := t.TempDir()

	p, err := LoadPreferences(dir)
	require.NoError(t, err)

	pair := p.Get("s1")
	pair.Active = pair.Active.Next()
	require.NoError(t, p.Set("s1", pair))

	got := p.Get("s1")
	assert.Equal(t, TimeAsc, got.Active)
	assert.Equal(t, Default, got.Archived, "cycling active leaves archived alone")
}

func TestPreferences_DropsUnknownStoredOption(t *testing.T) {
	dir := t.TempDir()

	p, err := LoadPreferences(dir)
	require.NoError(t, err)
	p.ByShift["s1"] = Pair{Active: Option("bogus"), Archived: AlphaAsc}
	require.NoError(t, p.Set("s2", Pair{Active: AlphaDesc, Archived: AlphaDesc}))

	reloaded, err := LoadPreferences(dir)
	require.NoError(t, err)
	assert.Equal(t, Pair{Active: Default, Archived: AlphaAsc}, reloaded.Get("s1"))
	assert.Equal(t, Pair{Active: AlphaDesc, Archived: AlphaDesc}, reloaded.Get("s2"))
}
