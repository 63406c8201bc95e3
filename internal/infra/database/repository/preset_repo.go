// Package repository provides SQLite repository implementations.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/whhaicheng/racesim/internal/domain/race"
	"github.com/whhaicheng/racesim/internal/domain/racer"
)

// SQLitePresetRepository implements the PresetRepository interface using SQLite.
type SQLitePresetRepository struct {
	db *sql.DB
}

// NewSQLitePresetRepository creates a new SQLite preset repository.
func NewSQLitePresetRepository(db *sql.DB) *SQLitePresetRepository {
	return &SQLitePresetRepository{db: db}
}

const presetColumns = `id, name, description, racer_count, race_length, tick_interval_ms,
	factor_policy, stop_when_finished, created_at, updated_at`

// Save saves a preset to the database.
// If the preset already exists (by ID), it will be updated.
func (r *SQLitePresetRepository) Save(ctx context.Context, p *race.Preset) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("save preset: %w", err)
	}

	query := `
		INSERT INTO presets (` + presetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			racer_count = excluded.racer_count,
			race_length = excluded.race_length,
			tick_interval_ms = excluded.tick_interval_ms,
			factor_policy = excluded.factor_policy,
			stop_when_finished = excluded.stop_when_finished,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Parameters.RacerCount,
		p.Parameters.RaceLength,
		p.Parameters.TickInterval.Milliseconds(),
		p.Parameters.FactorPolicy.String(),
		p.Parameters.StopWhenFinished,
		p.CreatedAt.UTC().Format(time.RFC3339Nano),
		p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: presets.name") {
			return fmt.Errorf("%w: %s", race.ErrPresetNameTaken, p.Name)
		}
		return fmt.Errorf("save preset: %w", err)
	}

	return nil
}

// FindByID finds a preset by its ID.
func (r *SQLitePresetRepository) FindByID(ctx context.Context, id string) (*race.Preset, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+presetColumns+` FROM presets WHERE id = ?`, id)
	return r.scanPreset(row)
}

// FindByName finds a preset by its unique name.
func (r *SQLitePresetRepository) FindByName(ctx context.Context, name string) (*race.Preset, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+presetColumns+` FROM presets WHERE name = ?`, name)
	return r.scanPreset(row)
}

// FindAll finds all presets ordered by name.
func (r *SQLitePresetRepository) FindAll(ctx context.Context) ([]*race.Preset, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+presetColumns+` FROM presets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query presets: %w", err)
	}
	defer rows.Close()

	presets := []*race.Preset{}
	for rows.Next() {
		p, err := r.scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate presets: %w", err)
	}

	return presets, nil
}

// Delete deletes a preset by its ID.
func (r *SQLitePresetRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM presets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return race.ErrPresetNotFound
	}

	return nil
}

// ExistsByName checks if a preset with the given name exists, ignoring excludeID.
func (r *SQLitePresetRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM presets WHERE name = ? AND id != ?`, name, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check preset name: %w", err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLitePresetRepository) scanPreset(row rowScanner) (*race.Preset, error) {
	var (
		p                    race.Preset
		tickMS               int64
		policy               string
		createdAt, updatedAt string
	)

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Parameters.RacerCount,
		&p.Parameters.RaceLength,
		&tickMS,
		&policy,
		&p.Parameters.StopWhenFinished,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, race.ErrPresetNotFound
		}
		return nil, fmt.Errorf("scan preset: %w", err)
	}

	p.Parameters.TickInterval = time.Duration(tickMS) * time.Millisecond
	p.Parameters.FactorPolicy = racer.FactorPolicy(policy)

	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &p, nil
}
