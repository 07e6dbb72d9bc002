package providers

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"captionflow/internal/app/api/provider"
)

func TestColumns(t *testing.T) {
	info := provider.ProviderInfo{Name: "speechmatics", AcceptsURL: true, AcceptsUpload: true, RequiresAPIKey: true}
	assert.Equal(t, "file,url", inputs(info))
	assert.Equal(t, "-", inputs(provider.ProviderInfo{}))

	assert.Equal(t, "configured", keyStatus(info, "key"))
	assert.Equal(t, "per request", keyStatus(info, ""))
	assert.Equal(t, "n/a", keyStatus(provider.ProviderInfo{}, ""))

	assert.Equal(t, "-", healthStatus(nil, "speechmatics"))
	assert.Equal(t, "ok", healthStatus(map[string]error{"speechmatics": nil}, "speechmatics"))
	assert.Equal(t, "unhealthy: down", healthStatus(map[string]error{"speechmatics": errors.New("down")}, "speechmatics"))
}

func TestInitWritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "providers.yaml")
	configPath, force = path, false
	t.Cleanup(func() { configPath, force = "", false })

	var out bytes.Buffer
	initCmd.SetOut(&out)
	require.NoError(t, initCmd.RunE(initCmd, nil))
	assert.Contains(t, out.String(), path)

	cfg, err := provider.NewConfigManager(path).LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "speechmatics", cfg.DefaultProvider)

	assert.Error(t, initCmd.RunE(initCmd, nil), "existing file without --force")
	force = true
	assert.NoError(t, initCmd.RunE(initCmd, nil))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
