package incident_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredr0ck/honey-potter/pkg/api"
	"github.com/fredr0ck/honey-potter/pkg/incident"
	"github.com/fredr0ck/honey-potter/pkg/store"
)

// eventClient serves canned per-incident event lists. The embedded nil
// Client panics on any other call, which is exactly what these tests want.
type eventClient struct {
	api.Client
	byIncident map[string][]api.Event
	calls      int
}

func (c *eventClient) ListEvents(ctx context.Context, filter api.EventFilter) ([]api.Event, error) {
	c.calls++
	return c.byIncident[filter.IncidentID], nil
}

func ts(minutesAgo int) time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).Add(-time.Duration(minutesAgo) * time.Minute)
}

func TestTimelineOrdersOldestFirst(t *testing.T) {
	client := &eventClient{byIncident: map[string][]api.Event{
		"inc-1": {
			{ID: "e-newest", Timestamp: ts(5)},
			{ID: "e-oldest", Timestamp: ts(60)},
			{ID: "e-middle", Timestamp: ts(30)},
		},
	}}
	c := incident.New(store.New(), client)

	events, err := c.Timeline(context.Background(), "inc-1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "e-oldest", events[0].ID)
	assert.Equal(t, "e-middle", events[1].ID)
	assert.Equal(t, "e-newest", events[2].ID)
}

func TestTimelineDoesNotMutateCachedOrder(t *testing.T) {
	s := store.New()
	client := &eventClient{byIncident: map[string][]api.Event{
		"inc-1": {
			{ID: "e-newest", Timestamp: ts(5)},
			{ID: "e-oldest", Timestamp: ts(60)},
		},
	}}
	c := incident.New(s, client)

	_, err := c.Timeline(context.Background(), "inc-1")
	require.NoError(t, err)

	cached, _, ok := s.Get(store.IncidentEventsKey("inc-1"))
	require.True(t, ok)
	raw := cached.([]api.Event)
	assert.Equal(t, "e-newest", raw[0].ID, "cached snapshot must keep fetch order")
}

func TestTimelineCachedAcrossViews(t *testing.T) {
	client := &eventClient{byIncident: map[string][]api.Event{
		"inc-1": {{ID: "e1", Timestamp: ts(1)}},
	}}
	c := incident.New(store.New(), client)

	_, err := c.Timeline(context.Background(), "inc-1")
	require.NoError(t, err)
	_, err = c.Timeline(context.Background(), "inc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
}

func TestInvalidateTimelineForcesRefetch(t *testing.T) {
	client := &eventClient{byIncident: map[string][]api.Event{
		"inc-1": {{ID: "e1", Timestamp: ts(1)}},
	}}
	c := incident.New(store.New(), client)

	_, err := c.Timeline(context.Background(), "inc-1")
	require.NoError(t, err)
	c.InvalidateTimeline("inc-1")
	_, err = c.Timeline(context.Background(), "inc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
}

func TestTimelineRejectsBadID(t *testing.T) {
	c := incident.New(store.New(), &eventClient{})
	_, err := c.Timeline(context.Background(), "not/an/id")
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
}

func TestTimelineEvictionDropsStoreKey(t *testing.T) {
	s := store.New()
	client := &eventClient{byIncident: map[string][]api.Event{}}
	c := incident.New(s, client)

	// One more incident than the tracker holds evicts the least recently
	// viewed timeline from the store with it.
	const n = 65
	for i := 0; i < n; i++ {
		_, err := c.Timeline(context.Background(), fmt.Sprintf("inc-%03d", i))
		require.NoError(t, err)
	}

	assert.False(t, s.Registered(store.IncidentEventsKey("inc-000")))
	assert.True(t, s.Registered(store.IncidentEventsKey(fmt.Sprintf("inc-%03d", n-1))))
}

func TestSummarizeCopiesServerAggregates(t *testing.T) {
	c := incident.New(store.New(), &eventClient{})
	inc := api.Incident{
		ID: "inc-1", HoneypotID: "hp-1", SourceIP: "203.0.113.7",
		ThreatLevel: api.LevelCompromise, Status: "new", EventCount: 17,
		FirstSeen: ts(120), LastSeen: ts(3),
	}
	sum := c.Summarize(inc)
	assert.Equal(t, "inc-1", sum.ID)
	assert.Equal(t, 17, sum.EventCount, "event count comes from the record, never recounted")
	assert.Equal(t, api.LevelCompromise, sum.ThreatLevel)
	assert.Equal(t, "compromise", sum.Threat)
	assert.Equal(t, inc.FirstSeen, sum.FirstSeen)
	assert.Equal(t, inc.LastSeen, sum.LastSeen)
}

func TestSelectToggles(t *testing.T) {
	c := incident.New(store.New(), &eventClient{})
	assert.Equal(t, "", c.Selected())

	assert.Equal(t, "inc-1", c.Select("inc-1"))
	assert.Equal(t, "inc-1", c.Selected())

	// Selecting another incident replaces the selection.
	assert.Equal(t, "inc-2", c.Select("inc-2"))

	// Selecting the selected incident deselects it.
	assert.Equal(t, "", c.Select("inc-2"))
	assert.Equal(t, "", c.Selected())
}
