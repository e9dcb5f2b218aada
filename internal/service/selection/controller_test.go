package selection

import (
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regiodash/internal/domain/region"
	"regiodash/internal/domain/selection"
)

type stubCatalog struct {
	regions   map[int]map[string]bool
	variables map[string]bool
}

func newStubCatalog() *stubCatalog {
	codes := map[string]bool{}
	for _, c := range []string{"GM0503", "GM0505", "GM0518", "GM0599", "GM0344", "A", "B", "C"} {
		codes[c] = true
	}
	return &stubCatalog{
		regions: map[int]map[string]bool{
			2019: {"GM0503": true, "GM0505": true},
			2020: codes,
		},
		variables: map[string]bool{"gemiddelde_woningwaarde_99": true, "totale_bevolking_1": true},
	}
}

func (c *stubCatalog) ExistsIn(year int, code string) bool { return c.regions[year][code] }

func (c *stubCatalog) ValidateYear(year int) error {
	if _, ok := c.regions[year]; !ok {
		return region.UnknownYear(year)
	}
	return nil
}

func (c *stubCatalog) ValidateVariable(column string) error {
	if !c.variables[column] {
		return region.UnknownVariable(column)
	}
	return nil
}

type stubLocator map[selection.Point]string

func (l stubLocator) Locate(_ int, lon, lat float64) (string, bool) {
	id, ok := l[selection.Point{Lon: lon, Lat: lat}]
	return id, ok
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newController(limit int) *Controller {
	return NewController(newStubCatalog(), stubLocator{{Lon: 4.36, Lat: 52.01}: "GM0503"}, limit, discard())
}

func newState() *selection.State {
	return &selection.State{Selected: []string{}, Year: 2020, Variable: "gemiddelde_woningwaarde_99"}
}

func toggle(id string) selection.Event {
	return selection.Event{Kind: selection.EventToggleRegion, HasPayload: true, Region: id}
}

func setRegions(ids ...string) selection.Event {
	return selection.Event{Kind: selection.EventSetRegions, HasPayload: true, Regions: ids}
}

func TestApply_ToggleTwice(t *testing.T) {
	c := newController(10)
	s := newState()

	out, err := c.Apply(s, toggle("GM0503"))
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, []string{"GM0503"}, s.Selected)

	out, err = c.Apply(s, toggle("GM0503"))
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Empty(t, s.Selected)
}

func TestApply_ToggleAtCap(t *testing.T) {
	c := newController(2)
	s := newState()

	for _, id := range []string{"GM0503", "GM0505", "GM0518"} {
		_, err := c.Apply(s, toggle(id))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"GM0503", "GM0505"}, s.Selected)

	// removing still works at the cap
	_, err := c.Apply(s, toggle("GM0503"))
	require.NoError(t, err)
	assert.Equal(t, []string{"GM0505"}, s.Selected)
}

func TestApply_ToggleUnknownRegion(t *testing.T) {
	c := newController(10)
	s := newState()

	out, err := c.Apply(s, toggle("GM9999"))
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Equal(t, []string{"GM9999"}, out.Dropped)
	assert.Empty(t, s.Selected)
}

func TestApply_SetRegionsTruncates(t *testing.T) {
	c := newController(2)
	s := newState()

	out, err := c.Apply(s, setRegions("A", "B", "C"))
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, []string{"A", "B"}, s.Selected)
}

func TestApply_SetRegionsDropsUnknownAndDuplicates(t *testing.T) {
	c := newController(3)
	s := newState()

	out, err := c.Apply(s, setRegions("GM0503", "GM9999", " GM0503", "GM0505", "GM0518", "GM0599"))
	require.NoError(t, err)
	assert.Equal(t, []string{"GM9999"}, out.Dropped)
	assert.Equal(t, []string{"GM0503", "GM0505", "GM0518"}, s.Selected)

	out, err = c.Apply(s, setRegions())
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Empty(t, s.Selected)
}

func TestApply_SelectPoints(t *testing.T) {
	c := newController(1)
	s := newState()

	ev := selection.Event{Kind: selection.EventSelectPoints, HasPayload: true, Regions: []string{"GM0505", "GM0503"}}
	_, err := c.Apply(s, ev)
	require.NoError(t, err)
	assert.Equal(t, []string{"GM0505"}, s.Selected)
}

func TestApply_ToggleAt(t *testing.T) {
	c := newController(10)
	s := newState()

	ev := selection.Event{Kind: selection.EventToggleAt, HasPayload: true, Point: selection.Point{Lon: 4.36, Lat: 52.01}}
	out, err := c.Apply(s, ev)
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, []string{"GM0503"}, s.Selected)

	ev.Point = selection.Point{Lon: 0, Lat: 0}
	out, err = c.Apply(s, ev)
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Equal(t, []string{"GM0503"}, s.Selected)
}

func TestApply_SetYearKeepsSelection(t *testing.T) {
	c := newController(10)
	s := newState()
	_, err := c.Apply(s, setRegions("GM0503", "GM0518"))
	require.NoError(t, err)

	out, err := c.Apply(s, selection.Event{Kind: selection.EventSetYear, HasPayload: true, Year: 2019})
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, 2019, s.Year)
	assert.Equal(t, []string{"GM0503", "GM0518"}, s.Selected)

	// a region missing from the new year can still be removed
	_, err = c.Apply(s, toggle("GM0518"))
	require.NoError(t, err)
	assert.Equal(t, []string{"GM0503"}, s.Selected)
}

func TestApply_ConfigErrorsKeepState(t *testing.T) {
	c := newController(10)
	s := newState()
	s.Selected = []string{"GM0503"}
	before := s.Clone()

	_, err := c.Apply(s, selection.Event{Kind: selection.EventSetYear, HasPayload: true, Year: 1999})
	assert.True(t, errors.Is(err, region.ErrUnknownYear))
	assert.True(t, region.IsConfigError(err))

	_, err = c.Apply(s, selection.Event{Kind: selection.EventSetVariable, HasPayload: true, Variable: "nonexistent_col"})
	assert.True(t, errors.Is(err, region.ErrUnknownVariable))

	assert.Equal(t, before, *s)
}

func TestApply_SetVariable(t *testing.T) {
	c := newController(10)
	s := newState()

	out, err := c.Apply(s, selection.Event{Kind: selection.EventSetVariable, HasPayload: true, Variable: "totale_bevolking_1"})
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, "totale_bevolking_1", s.Variable)
}

func TestApply_NoPayloadSkipped(t *testing.T) {
	c := newController(10)

	kinds := []selection.EventKind{
		selection.EventToggleRegion,
		selection.EventToggleAt,
		selection.EventSetRegions,
		selection.EventSelectPoints,
		selection.EventSetYear,
		selection.EventSetVariable,
	}
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			s := newState()
			s.Selected = []string{"GM0503"}
			before := s.Clone()

			out, err := c.Apply(s, selection.Event{Kind: kind, Regions: []string{}})
			require.NoError(t, err)
			assert.True(t, out.Skipped)
			assert.Equal(t, before, *s)
		})
	}
}

func TestApply_UnknownKind(t *testing.T) {
	c := newController(10)
	_, err := c.Apply(newState(), selection.Event{Kind: "zoom", HasPayload: true})
	assert.True(t, errors.Is(err, selection.ErrUnknownEvent))
}

func TestApply_Properties(t *testing.T) {
	ids := []string{"GM0503", "GM0505", "GM0518", "GM0599", "GM0344", "GM9999"}
	rng := rand.New(rand.NewSource(42))

	for _, limit := range []int{1, 2, 3, 10} {
		c := newController(limit)
		s := newState()

		for i := 0; i < 500; i++ {
			if rng.Intn(4) == 0 {
				n := rng.Intn(len(ids) + 1)
				perm := rng.Perm(len(ids))[:n]
				picked := make([]string, 0, n)
				for _, p := range perm {
					picked = append(picked, ids[p])
				}
				_, err := c.Apply(s, setRegions(picked...))
				require.NoError(t, err)
			} else {
				id := ids[rng.Intn(len(ids))]
				before := s.Clone()
				atCap := len(before.Selected) >= limit && !before.Contains(id)

				_, err := c.Apply(s, toggle(id))
				require.NoError(t, err)

				// toggling twice restores the set unless the add hit the cap
				if !atCap {
					probe := s.Clone()
					_, err := c.Apply(&probe, toggle(id))
					require.NoError(t, err)
					assert.ElementsMatch(t, before.Selected, probe.Selected)
				}
			}
			require.LessOrEqual(t, len(s.Selected), limit)
		}
	}
}
