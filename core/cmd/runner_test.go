package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/catalogbot/core/config"
	coretelegram "github.com/m3rciful/catalogbot/core/telegram"
)

type stubConfig struct{ core *coreconfig.Config }

func (s stubConfig) CoreConfig() *coreconfig.Config { return s.core }

type stubApp struct {
	closed bool
}

func (a *stubApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func (a *stubApp) Close() error {
	a.closed = true
	return nil
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("CATALOGBOT_TEST_CONFIG", "/etc/env.yaml")
	assert.Equal(t, "/flag.yaml", Options{ConfigPath: "/flag.yaml", ConfigEnvVar: "CATALOGBOT_TEST_CONFIG"}.ResolveConfigPath())
	assert.Equal(t, "/etc/env.yaml", Options{ConfigEnvVar: "CATALOGBOT_TEST_CONFIG", DefaultConfigPath: "config.yaml"}.ResolveConfigPath())
	assert.Equal(t, "config.yaml", Options{ConfigEnvVar: "CATALOGBOT_TEST_UNSET", DefaultConfigPath: "config.yaml"}.ResolveConfigPath())
}

func TestRunContextWiresHooks(t *testing.T) {
	app := &stubApp{}
	var started, stopped bool
	err := RunContext(context.Background(), Options{
		ConfigPath: "config.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return stubConfig{core: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			return app, nil
		},
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			started = true
			require.NoError(t, opts.OnStop(ctx, coretelegram.Runtime{}))
			stopped = true
			return nil
		},
	})
	require.NoError(t, err)
	assert.True(t, started)
	assert.True(t, stopped)
	assert.True(t, app.closed)
}

func TestRunContextConfigError(t *testing.T) {
	err := RunContext(context.Background(), Options{
		LoadConfig: func(string) (ConfigCarrier, error) { return nil, errors.New("bad yaml") },
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			t.Fatal("bootstrap must not run")
			return nil, nil
		},
	})
	assert.ErrorContains(t, err, "bad yaml")
}
