package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptchat/internal/config"
	"scriptchat/internal/observability"
)

func TestParseFirebaseConfig(t *testing.T) {
	cfg, err := config.ParseFirebaseConfig(`{"projectId":"demo-project"}`)
	require.NoError(t, err)
	assert.Equal(t, "demo-project", cfg.ProjectID)
}

func TestParseFirebaseConfigInvalid(t *testing.T) {
	_, err := config.ParseFirebaseConfig(`{not json`)
	require.Error(t, err)

	_, err = config.ParseFirebaseConfig(`{"apiKey":"x"}`)
	require.Error(t, err, "missing projectId must be rejected")
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SCRIPTCHAT_PORT", "SCRIPTCHAT_MODEL_NAME", "SCRIPTCHAT_NAMESPACE",
		"SCRIPTCHAT_TURN_TIMEOUT", "SCRIPTCHAT_FIREBASE_CONFIG",
	} {
		t.Setenv(key, "")
	}

	cfg := config.Load(observability.Logger())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini-2.0-flash", cfg.ModelName)
	assert.Equal(t, "scriptchat", cfg.Namespace)
	assert.Equal(t, 60*time.Second, cfg.TurnTimeout)
	assert.Nil(t, cfg.Firebase)
}

func TestLoadInvalidBlobFallsBackToNil(t *testing.T) {
	t.Setenv("SCRIPTCHAT_FIREBASE_CONFIG", "{broken")

	cfg := config.Load(observability.Logger())
	assert.Nil(t, cfg.Firebase)
}

func TestLoadExampleList(t *testing.T) {
	t.Setenv("SCRIPTCHAT_EXAMPLES", "docs/a.lua, docs/b.lua ,")

	cfg := config.Load(observability.Logger())
	assert.Equal(t, []string{"docs/a.lua", "docs/b.lua"}, cfg.ExampleResources)
}
