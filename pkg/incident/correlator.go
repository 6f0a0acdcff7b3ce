// Package incident exposes per-incident rollups and event timelines over the
// cached event and incident collections. Aggregation (count, threat level,
// time range) comes straight from the server-owned incident record — the
// console never recomputes it from events, which could diverge from server
// counts.
package incident

import (
	"context"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fredr0ck/honey-potter/pkg/api"
	"github.com/fredr0ck/honey-potter/pkg/store"
)

// timelineLimit bounds one incident's fetched event timeline.
const timelineLimit = 1000

// maxTimelines bounds how many per-incident timeline keys stay registered in
// the store before the least recently viewed is dropped.
const maxTimelines = 64

// Summary is the displayable rollup of one incident, copied from the
// server-owned record.
type Summary struct {
	ID          string    `json:"id" yaml:"id"`
	HoneypotID  string    `json:"honeypot_id" yaml:"honeypot_id"`
	SourceIP    string    `json:"source_ip" yaml:"source_ip"`
	ThreatLevel int       `json:"threat_level" yaml:"threat_level"`
	Threat      string    `json:"threat" yaml:"threat"`
	Status      string    `json:"status" yaml:"status"`
	EventCount  int       `json:"event_count" yaml:"event_count"`
	FirstSeen   time.Time `json:"first_seen" yaml:"first_seen"`
	LastSeen    time.Time `json:"last_seen" yaml:"last_seen"`
}

// Correlator resolves incidents to ordered event timelines through the
// store, so a timeline is always recomputed from the current cache rather
// than a persisted cursor.
type Correlator struct {
	store    *store.Store
	client   api.Client
	selected string
	tracked  *lru.Cache[string, store.Key]
}

// New returns a Correlator reading through st and fetching timelines from
// client.
func New(st *store.Store, client api.Client) *Correlator {
	c := &Correlator{store: st, client: client}
	// Evicted timelines leave the store too; re-viewing refetches them.
	c.tracked, _ = lru.NewWithEvict[string, store.Key](maxTimelines, func(_ string, key store.Key) {
		st.Drop(key)
	})
	return c
}

// Timeline returns the incident's events ordered by ascending timestamp,
// fetched through the store (and therefore subject to its staleness and
// dedup rules).
func (c *Correlator) Timeline(ctx context.Context, incidentID string) ([]api.Event, error) {
	if err := api.ValidateID(incidentID); err != nil {
		return nil, err
	}
	key := store.IncidentEventsKey(incidentID)
	if _, ok := c.tracked.Get(incidentID); !ok {
		id := incidentID
		c.store.Register(key, func(ctx context.Context) (any, error) {
			evs, err := c.client.ListEvents(ctx, api.EventFilter{IncidentID: id, Limit: timelineLimit})
			if err != nil {
				return nil, err
			}
			return evs, nil
		})
		c.tracked.Add(incidentID, key)
	}

	evs, err := store.Lookup[[]api.Event](ctx, c.store, key)
	if err != nil {
		return nil, err
	}
	// Cached collections are immutable snapshots; sort a copy.
	ordered := make([]api.Event, len(evs))
	copy(ordered, evs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})
	return ordered, nil
}

// InvalidateTimeline marks one incident's timeline stale, on top of whatever
// the mutation coordinator invalidates.
func (c *Correlator) InvalidateTimeline(incidentID string) {
	if _, ok := c.tracked.Get(incidentID); ok {
		c.store.Invalidate(store.IncidentEventsKey(incidentID))
	}
}

// Summarize builds the displayable rollup for inc directly from the record.
func (c *Correlator) Summarize(inc api.Incident) Summary {
	return Summary{
		ID:          inc.ID,
		HoneypotID:  inc.HoneypotID,
		SourceIP:    inc.SourceIP,
		ThreatLevel: inc.ThreatLevel,
		Threat:      api.LevelName(inc.ThreatLevel),
		Status:      inc.Status,
		EventCount:  inc.EventCount,
		FirstSeen:   inc.FirstSeen,
		LastSeen:    inc.LastSeen,
	}
}

// Select toggles the selected incident: selecting the already-selected id
// deselects it. Returns the now-selected id ("" when none).
func (c *Correlator) Select(incidentID string) string {
	if c.selected == incidentID {
		c.selected = ""
	} else {
		c.selected = incidentID
	}
	return c.selected
}

// Selected returns the currently selected incident id, "" when none.
func (c *Correlator) Selected() string { return c.selected }
