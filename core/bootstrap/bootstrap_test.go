package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/catalogbot/core/config"
	coredatabase "github.com/m3rciful/catalogbot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunWithoutDatabase(t *testing.T) {
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			t.Fatal("connect must not be called")
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.Nil(t, res.DB)
	assert.NoError(t, res.Close())
}

func TestRunMigratesBeforeConnect(t *testing.T) {
	var calls []string
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Database:   &coredatabase.Config{Name: "catalog"},
		LoggerInit: noLogger,
		Migrate: func(context.Context, coredatabase.Config) error {
			calls = append(calls, "migrate")
			return nil
		},
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			calls = append(calls, "connect")
			return nil, errors.New("refused")
		},
	})
	require.ErrorContains(t, err, "refused")
	assert.Equal(t, []string{"migrate", "connect"}, calls)
}

func TestRunStopsOnMigrationFailure(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Database:   &coredatabase.Config{},
		LoggerInit: noLogger,
		Migrate: func(context.Context, coredatabase.Config) error {
			return errors.New("dirty")
		},
	})
	assert.ErrorContains(t, err, "migrations failed")
}

func TestRunRequiresConfig(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.Error(t, err)
}
