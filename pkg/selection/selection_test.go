package selection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredr0ck/honey-potter/pkg/api"
	"github.com/fredr0ck/honey-potter/pkg/selection"
)

func TestToggle(t *testing.T) {
	c := selection.New()
	c.SetMode(true)

	c.Toggle("a")
	assert.True(t, c.Selected("a"))
	assert.Equal(t, 1, c.Count())

	c.Toggle("a")
	assert.False(t, c.Selected("a"))
	assert.Equal(t, 0, c.Count())
}

func TestSelectAllAndIsAllSelected(t *testing.T) {
	c := selection.New()
	c.SetMode(true)
	current := []string{"a", "b", "c"}

	assert.False(t, c.IsAllSelected(current))

	c.SelectAll(current)
	assert.True(t, c.IsAllSelected(current))
	assert.Equal(t, 3, c.Count())

	// Deselecting one entry breaks the all-selected state.
	c.Toggle("b")
	assert.False(t, c.IsAllSelected(current))

	// An empty collection is never "all selected".
	assert.False(t, c.IsAllSelected(nil))
}

func TestSelectAllReplacesPriorSelection(t *testing.T) {
	c := selection.New()
	c.SetMode(true)
	c.Toggle("stale-id")

	c.SelectAll([]string{"a", "b"})
	assert.False(t, c.Selected("stale-id"))
	assert.ElementsMatch(t, []string{"a", "b"}, c.IDs())
}

func TestLeavingModeClearsSelection(t *testing.T) {
	c := selection.New()
	c.SetMode(true)
	c.Toggle("a")
	c.Toggle("b")

	c.SetMode(false)
	assert.False(t, c.Mode())
	assert.Equal(t, 0, c.Count())

	// Re-entering starts from an empty set.
	c.SetMode(true)
	assert.Equal(t, 0, c.Count())
}

func TestIDsSorted(t *testing.T) {
	c := selection.New()
	c.Toggle("zz")
	c.Toggle("aa")
	c.Toggle("mm")
	assert.Equal(t, []string{"aa", "mm", "zz"}, c.IDs())
}

func TestBatchIDs(t *testing.T) {
	c := selection.New()

	// Empty selection is rejected locally, before any network call.
	_, err := c.BatchIDs()
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))

	c.Toggle("b")
	c.Toggle("a")
	ids, err := c.BatchIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestZeroValueUsable(t *testing.T) {
	var c selection.Controller
	assert.False(t, c.Mode())
	c.Toggle("a")
	assert.True(t, c.Selected("a"))
}
