// Package selection tracks a set of selected entity identifiers within one
// collection view, feeding batched commands such as bulk delete.
package selection

import (
	"fmt"
	"sort"

	"github.com/fredr0ck/honey-potter/pkg/api"
)

// Controller holds the selection state for one collection view. The zero
// value is ready to use, with selection mode off.
type Controller struct {
	mode bool
	ids  map[string]struct{}
}

// New returns an empty Controller.
func New() *Controller {
	return &Controller{ids: map[string]struct{}{}}
}

// Mode reports whether selection mode is active.
func (c *Controller) Mode() bool { return c.mode }

// SetMode toggles selection mode. Leaving selection mode always clears the
// selected set, so no selection leaks across modes.
func (c *Controller) SetMode(on bool) {
	c.mode = on
	if !on {
		c.Clear()
	}
}

// Toggle adds id if absent, removes it if present.
func (c *Controller) Toggle(id string) {
	if c.ids == nil {
		c.ids = map[string]struct{}{}
	}
	if _, ok := c.ids[id]; ok {
		delete(c.ids, id)
	} else {
		c.ids[id] = struct{}{}
	}
}

// Selected reports whether id is currently selected.
func (c *Controller) Selected(id string) bool {
	_, ok := c.ids[id]
	return ok
}

// SelectAll replaces the selection with every id in current, the latest
// fetched id list for the collection. A stale snapshot must not be used.
func (c *Controller) SelectAll(current []string) {
	c.ids = make(map[string]struct{}, len(current))
	for _, id := range current {
		c.ids[id] = struct{}{}
	}
}

// Clear empties the selection.
func (c *Controller) Clear() {
	c.ids = map[string]struct{}{}
}

// IsAllSelected reports whether every id in current is selected and current
// is non-empty.
func (c *Controller) IsAllSelected(current []string) bool {
	if len(current) == 0 {
		return false
	}
	for _, id := range current {
		if _, ok := c.ids[id]; !ok {
			return false
		}
	}
	return true
}

// Count returns the number of selected ids.
func (c *Controller) Count() int { return len(c.ids) }

// IDs returns the selected ids in sorted order.
func (c *Controller) IDs() []string {
	out := make([]string, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// BatchIDs validates and returns the selection for a bulk command. An empty
// selection is rejected locally, before any network call.
func (c *Controller) BatchIDs() ([]string, error) {
	if len(c.ids) == 0 {
		return nil, fmt.Errorf("%w: select at least one entry", api.ErrValidation)
	}
	return c.IDs(), nil
}
