package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/comalice/behaviortreex/tank"
)

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tanksim.yml")

	validConfig := `version: "1"
simulation:
  steps: 500
  dt: 10ms
  seed: 7
agents:
  alpha:
    profile: tracker
    x: -20
    heading: 90
  bravo:
    profile: "2"
    x: 20
    heading: -90
    params:
      flee_range: 30
      fire_delay: 750ms
`
	err := os.WriteFile(configPath, []byte(validConfig), 0644)
	require.NoError(t, err)

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "1", config.Version)
	assert.Len(t, config.Agents, 2)
	assert.Equal(t, 500, config.Simulation.Steps)
	assert.Equal(t, 10*time.Millisecond, config.Simulation.DT.Duration)
	assert.Equal(t, uint64(7), config.Simulation.Seed)
	assert.Equal(t, []string{"alpha", "bravo"}, config.AgentNames())

	assert.Equal(t, tank.Tracker, config.Profile("alpha"))
	assert.Equal(t, tank.Defensive, config.Profile("bravo"))
	assert.Equal(t, tank.Default, config.Profile("charlie"))

	params := config.Params("bravo")
	assert.Equal(t, 30.0, params.FleeRange)
	assert.Equal(t, 750*time.Millisecond, params.FireDelay)
	assert.Equal(t, 50.0, params.FireRange, "unset params keep the profile default")
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/tanksim.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestParse_InvalidYAML(t *testing.T) {
	invalidYAML := `version: "1"
agents:
  - this is invalid
    yaml syntax
`
	config, err := Parse([]byte(invalidYAML))
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParse_BadDuration(t *testing.T) {
	_, err := Parse([]byte(`version: "1"
simulation:
  dt: fast
agents:
  alpha: {profile: tracker}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParse_AppliesDefaults(t *testing.T) {
	config, err := Parse([]byte(`version: "1"
agents:
  alpha: {profile: frantic}
`))
	require.NoError(t, err)
	s := config.Simulation
	require.NotNil(t, s)
	assert.Equal(t, 3000, s.Steps)
	assert.Equal(t, 20*time.Millisecond, s.DT.Duration)
	assert.Equal(t, 80.0, s.ArenaSize)
	assert.Equal(t, 2.5, s.HitRadius)
	assert.Equal(t, 100.0, s.Health)
	assert.Equal(t, 500*time.Millisecond, s.Reload.Duration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "wrong version",
			yaml:    "version: \"2\"\nagents:\n  a: {profile: tracker}\n",
			wantErr: "unsupported version",
		},
		{
			name:    "no agents",
			yaml:    "version: \"1\"\n",
			wantErr: "no agents defined",
		},
		{
			name:    "missing profile",
			yaml:    "version: \"1\"\nagents:\n  a: {x: 1}\n",
			wantErr: "profile is required",
		},
		{
			name:    "unknown profile",
			yaml:    "version: \"1\"\nagents:\n  a: {profile: sniper}\n",
			wantErr: "unknown profile",
		},
		{
			name:    "negative steps",
			yaml:    "version: \"1\"\nsimulation: {steps: -1}\nagents:\n  a: {profile: tracker}\n",
			wantErr: "simulation.steps",
		},
		{
			name:    "zero perception interval",
			yaml:    "version: \"1\"\nagents:\n  a: {profile: tracker, params: {perception_interval: 0s}}\n",
			wantErr: "perception_interval",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefault(t *testing.T) {
	config := Default()
	require.NoError(t, config.Validate())
	assert.Equal(t, []string{"alpha", "bravo"}, config.AgentNames())
	assert.Equal(t, 3000, config.Simulation.Steps)
}

func TestDurationMarshal(t *testing.T) {
	out, err := yaml.Marshal(struct {
		D Duration `yaml:"d"`
	}{Duration{1500 * time.Millisecond}})
	require.NoError(t, err)
	assert.Equal(t, "d: 1.5s\n", string(out))
}

func TestParse_Observability(t *testing.T) {
	config, err := Parse([]byte(`version: "1"
agents:
  alpha: {profile: tracker}
observability:
  redis_addr: localhost:6379
`))
	require.NoError(t, err)
	require.NotNil(t, config.Observability)
	assert.Equal(t, "localhost:6379", config.Observability.RedisAddr)
}
