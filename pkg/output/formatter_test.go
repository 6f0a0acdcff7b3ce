package output_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredr0ck/honey-potter/pkg/api"
	"github.com/fredr0ck/honey-potter/pkg/output"
)

func TestTableSliceSkipsHiddenColumns(t *testing.T) {
	f := output.NewFormatter("table")
	out := f.Format([]api.Honeypot{
		{
			ID: "hp-1", Name: "edge-ssh", Type: "ssh", Port: 2222,
			Address: "0.0.0.0", Status: "running",
			Config:    map[string]any{"banner": "OpenSSH_8.9"},
			CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
	})

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "edge-ssh")
	assert.Contains(t, out, "running")
	// Config carries `table:"-"` and stays out of table mode.
	assert.NotContains(t, out, "CONFIG")
	assert.NotContains(t, out, "OpenSSH_8.9")
}

func TestTableEmptySlice(t *testing.T) {
	out := output.NewFormatter("table").Format([]api.Honeypot{})
	assert.Equal(t, "No resources found.\n", out)
}

func TestTableSingleStruct(t *testing.T) {
	out := output.NewFormatter("table").Format(&api.NotificationSettings{
		EmailEnabled: true,
		EmailAddress: "ops@example.com",
	})
	assert.Contains(t, out, "EmailAddress:")
	assert.Contains(t, out, "ops@example.com")
}

func TestTableNilPointerRendersDash(t *testing.T) {
	out := output.NewFormatter("table").Format([]api.Honeytoken{
		{ID: "t1", ServiceType: "ssh", Username: "deploy", Password: "pw"},
	})
	// UsedAt is nil for an untriggered token.
	assert.Contains(t, out, "-")
}

func TestJSONFormatter(t *testing.T) {
	out := output.NewFormatter("json").Format([]api.Honeypot{{ID: "hp-1", Name: "edge-ssh"}})
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "edge-ssh", decoded[0]["name"])
}

func TestYAMLFormatter(t *testing.T) {
	out := output.NewFormatter("yaml").Format([]api.Honeypot{{ID: "hp-1", Name: "edge-ssh"}})
	assert.Contains(t, out, "name: edge-ssh")
}

func TestUnknownFormatFallsBackToTable(t *testing.T) {
	f := output.NewFormatter("csv")
	assert.IsType(t, &output.TableFormatter{}, f)
}
