// Package repository provides unit tests for preset repository.
package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/racesim/internal/domain/race"
	"github.com/whhaicheng/racesim/internal/domain/racer"
	"github.com/whhaicheng/racesim/internal/infra/database"
)

func setupPresetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.InitializeSQLite(context.Background(), filepath.Join(t.TempDir(), "presets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testPreset(name string) *race.Preset {
	return race.NewPreset(name, race.Parameters{
		RacerCount:       6,
		RaceLength:       400,
		TickInterval:     250 * time.Millisecond,
		FactorPolicy:     racer.FactorFixed,
		StopWhenFinished: true,
	})
}

func TestPresetRepository_Save_FindByID(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLitePresetRepository(setupPresetTestDB(t))

	p := testPreset("marathon")
	p.Description = "long one"
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, p.ID, found.ID)
	assert.Equal(t, "marathon", found.Name)
	assert.Equal(t, "long one", found.Description)
	assert.Equal(t, p.Parameters, found.Parameters)
	assert.True(t, p.CreatedAt.Equal(found.CreatedAt))
}

func TestPresetRepository_Save_TickIntervalRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLitePresetRepository(setupPresetTestDB(t))

	tests := []struct {
		name     string
		interval time.Duration
		wantErr  bool
	}{
		{"whole milliseconds", 1500 * time.Millisecond, false},
		{"shortest", race.MinTickInterval, false},
		{"fractional milliseconds", 10500 * time.Microsecond, true},
		{"sub-millisecond", 500 * time.Microsecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPreset("interval-" + tt.name)
			p.Parameters.TickInterval = tt.interval

			err := repo.Save(ctx, p)
			if tt.wantErr {
				assert.ErrorIs(t, err, race.ErrInvalidConfiguration)
				exists, existsErr := repo.ExistsByName(ctx, p.Name, "")
				require.NoError(t, existsErr)
				assert.False(t, exists)
				return
			}

			require.NoError(t, err)
			found, err := repo.FindByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.interval, found.Parameters.TickInterval)
		})
	}
}

func TestPresetRepository_FindByName(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLitePresetRepository(setupPresetTestDB(t))

	p := testPreset("sprint")
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByName(ctx, "sprint")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	_, err = repo.FindByName(ctx, "missing")
	assert.ErrorIs(t, err, race.ErrPresetNotFound)
}

func TestPresetRepository_FindByID_NotFound(t *testing.T) {
	repo := NewSQLitePresetRepository(setupPresetTestDB(t))

	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, race.ErrPresetNotFound)
}

func TestPresetRepository_Save_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLitePresetRepository(setupPresetTestDB(t))

	p := testPreset("relay")
	require.NoError(t, repo.Save(ctx, p))

	p.Parameters.RacerCount = 12
	p.UpdatedAt = p.UpdatedAt.Add(time.Minute)
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, found.Parameters.RacerCount)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPresetRepository_Save_DuplicateName(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLitePresetRepository(setupPresetTestDB(t))

	require.NoError(t, repo.Save(ctx, testPreset("twin")))
	err := repo.Save(ctx, testPreset("twin"))
	assert.ErrorIs(t, err, race.ErrPresetNameTaken)
}

func TestPresetRepository_FindAll_OrderedByName(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLitePresetRepository(setupPresetTestDB(t))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	for _, name := range []string{"charlie", "alpha", "bravo"} {
		require.NoError(t, repo.Save(ctx, testPreset(name)))
	}

	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "bravo", all[1].Name)
	assert.Equal(t, "charlie", all[2].Name)
}

func TestPresetRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLitePresetRepository(setupPresetTestDB(t))

	p := testPreset("gone")
	require.NoError(t, repo.Save(ctx, p))
	require.NoError(t, repo.Delete(ctx, p.ID))

	_, err := repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, race.ErrPresetNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, p.ID), race.ErrPresetNotFound)
}

func TestPresetRepository_ExistsByName(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLitePresetRepository(setupPresetTestDB(t))

	p := testPreset("unique")
	require.NoError(t, repo.Save(ctx, p))

	exists, err := repo.ExistsByName(ctx, "unique", "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByName(ctx, "unique", p.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByName(ctx, "other", "")
	require.NoError(t, err)
	assert.False(t, exists)
}
