package logging

import (
	"bytes"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		config  Config
		wantErr bool
	}{
		"defaults":       {config: DefaultConfig()},
		"json debug":     {config: Config{Level: "DEBUG", Format: "json"}},
		"warning alias":  {config: Config{Level: "warning", Format: "text"}},
		"unknown level":  {config: Config{Level: "loud", Format: "text"}, wantErr: true},
		"unknown format": {config: Config{Level: "info", Format: "xml"}, wantErr: true},
		"empty level":    {config: Config{Format: "text"}, wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigureOutput_Json(t *testing.T) {
	defer func() {
		require.NoError(t, ConfigureOutput(DefaultConfig(), &bytes.Buffer{}))
	}()

	buf := &bytes.Buffer{}
	require.NoError(t, ConfigureOutput(Config{Level: "warn", Format: "json"}, buf))

	log.Info("hidden")
	log.WithField("query", "smoking_gun").Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"query":"smoking_gun"`)
	assert.Contains(t, out, `"msg":"visible"`)
}
