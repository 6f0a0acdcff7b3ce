// Package mutate coordinates state-changing commands against the cache of
// server-owned collections: an optional optimistic patch is applied before
// the command resolves, the affected collections are invalidated on success
// so the cache converges to authoritative state, and on failure the patch is
// rolled back without clobbering any later in-flight patch.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fredr0ck/honey-potter/pkg/api"
	"github.com/fredr0ck/honey-potter/pkg/store"
)

// Command is one state-changing operation against the control plane.
// Affects lists every collection the command is documented to change.
type Command struct {
	Name    string
	Affects []store.Key
	Run     func(ctx context.Context) error
}

// Patch is a locally-applied prediction of a command's effect on one
// collection, shown before server acknowledgment. Apply receives the current
// cached value (nil if none) and returns the predicted one; it must not
// mutate its argument.
type Patch struct {
	Key   store.Key
	Apply func(old any) any
}

// Coordinator issues commands and keeps the store consistent around them.
type Coordinator struct {
	store *store.Store
	log   *slog.Logger
}

// New returns a Coordinator over st. log may be nil.
func New(st *store.Store, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{store: st, log: log}
}

// applied pairs one patch with the snapshot it replaced. gen is the
// generation the patch produced; rollback restores the snapshot only while
// that generation is still current.
type applied struct {
	key      store.Key
	prev     any
	hadValue bool
	gen      uint64
}

// Do runs cmd, applying patches first when given.
//
// Success: every affected collection is invalidated, forcing a refetch so
// the cache converges to server truth — the patch is a prediction, not a
// final answer.
//
// Failure: each snapshot is restored (unless a later mutation has since
// patched the same collection), the affected collections are invalidated
// anyway so a stale optimistic view never survives, and the server-supplied
// detail (or a generic fallback) is returned as the error.
func (c *Coordinator) Do(ctx context.Context, cmd Command, patches ...Patch) error {
	var undo []applied
	for _, p := range patches {
		prev, _, hadValue := c.store.Snapshot(p.Key)
		next := p.Apply(prev)
		gen := c.store.Set(p.Key, next)
		undo = append(undo, applied{key: p.Key, prev: prev, hadValue: hadValue, gen: gen})
	}

	err := cmd.Run(ctx)
	if err == nil {
		for _, k := range cmd.Affects {
			c.store.Invalidate(k)
		}
		c.log.Debug("command succeeded", "command", cmd.Name)
		return nil
	}

	for i := len(undo) - 1; i >= 0; i-- {
		u := undo[i]
		if !c.store.CompareAndRestore(u.key, u.prev, u.hadValue, u.gen) {
			c.log.Debug("rollback skipped, later patch owns the view",
				"command", cmd.Name, "key", string(u.key))
		}
	}

	if errors.Is(err, api.ErrUnauthorized) {
		c.store.InvalidateAll()
		return err
	}

	for _, k := range cmd.Affects {
		c.store.Invalidate(k)
	}
	c.log.Warn("command failed", "command", cmd.Name, "error", err)
	return fmt.Errorf("%s: %w", cmd.Name, err)
}
