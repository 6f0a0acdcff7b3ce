package api_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredr0ck/honey-potter/pkg/api"
)

func TestValidateID(t *testing.T) {
	for _, id := range []string{
		"a",
		"5f2b0c1e-9d3a-4c7b-8e11-2f6d9a0b4c3d",
		"edge-ssh.prod_01",
	} {
		assert.NoError(t, api.ValidateID(id), "id %q", id)
	}

	for _, id := range []string{
		"",
		"has space",
		"slash/inside",
		"back\\slash",
		"null\x00byte",
		strings.Repeat("x", 65),
	} {
		err := api.ValidateID(id)
		require.Error(t, err, "id %q", id)
		assert.True(t, api.IsValidation(err), "id %q", id)
	}
}

func TestValidateIDs(t *testing.T) {
	assert.Error(t, api.ValidateIDs(nil))
	assert.NoError(t, api.ValidateIDs([]string{"a", "b"}))
	assert.Error(t, api.ValidateIDs([]string{"a", "bad/id"}))

	// The server's batch cap is enforced locally.
	big := make([]string, 101)
	for i := range big {
		big[i] = "id"
	}
	err := api.ValidateIDs(big)
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
	assert.NoError(t, api.ValidateIDs(big[:100]))
}

func TestValidateRequestHoneypotCreate(t *testing.T) {
	ok := api.HoneypotCreate{Name: "edge-ssh", Type: "ssh", Port: 2222, Address: "0.0.0.0"}
	assert.NoError(t, api.ValidateRequest(ok))

	for name, req := range map[string]api.HoneypotCreate{
		"missing name": {Type: "ssh", Port: 22, Address: "0.0.0.0"},
		"bad type":     {Name: "x", Type: "ftp", Port: 21, Address: "0.0.0.0"},
		"port too big": {Name: "x", Type: "http", Port: 70000, Address: "0.0.0.0"},
		"zero port":    {Name: "x", Type: "http", Address: "0.0.0.0"},
	} {
		err := api.ValidateRequest(req)
		require.Error(t, err, name)
		assert.True(t, api.IsValidation(err), name)
	}
}

func TestValidateRequestHoneytokenGenerate(t *testing.T) {
	assert.NoError(t, api.ValidateRequest(api.HoneytokenGenerate{ServiceType: "ssh", Count: 5}))
	assert.NoError(t, api.ValidateRequest(api.HoneytokenGenerate{
		ServiceType: "postgres",
		Items:       []api.HoneytokenItem{{Username: "backup_svc"}},
	}))

	assert.Error(t, api.ValidateRequest(api.HoneytokenGenerate{Count: 5}), "service type required")
	assert.Error(t, api.ValidateRequest(api.HoneytokenGenerate{ServiceType: "ssh", Count: 101}))
	assert.Error(t, api.ValidateRequest(api.HoneytokenGenerate{
		ServiceType: "ssh",
		Items:       []api.HoneytokenItem{{}},
	}), "items need usernames")
}

func TestErrorMessage(t *testing.T) {
	withDetail := &api.Error{StatusCode: 409, Detail: "port 8080 already in use"}
	assert.Equal(t, "port 8080 already in use", withDetail.Error())

	bare := &api.Error{StatusCode: 500}
	assert.Contains(t, bare.Error(), "500")
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "reconnaissance", api.LevelName(api.LevelRecon))
	assert.Equal(t, "brute-force", api.LevelName(api.LevelBruteForce))
	assert.Equal(t, "compromise", api.LevelName(api.LevelCompromise))
	assert.Equal(t, "unknown", api.LevelName(0))
	assert.Equal(t, "unknown", api.LevelName(9))
}
