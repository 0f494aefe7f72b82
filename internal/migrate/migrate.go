// Package migrate upgrades versioned on-disk files one schema step at a time.
package migrate

import (
	"fmt"
	"log/slog"
	"slices"
)

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// Migration upgrades data from the previous schema to Version.
type Migration struct {
	Version     int
	Description string
	Upgrade     func(data []byte) ([]byte, error)
}

// Registry is the migration chain for one file kind.
type Registry struct {
	// CurrentVersion is what a fully migrated file carries.
	CurrentVersion int
	Migrations     []Migration
}

// Config is the chain for config.toml. Version 1 is the flat settings file
// written by the original tray application.
var Config = &Registry{
	CurrentVersion: 2,
	Migrations:     []Migration{legacySettings},
}

// ///////////////////////////////////////////////
// Registry
// ///////////////////////////////////////////////

// Register adds m. It panics when m.Version is already registered.
func (r *Registry) Register(m Migration) {
	if r.index(m.Version) >= 0 {
		panic(fmt.Sprintf("migrate: duplicate migration version %d (%q)", m.Version, m.Description))
	}
	r.Migrations = append(r.Migrations, m)
}

func (r *Registry) index(version int) int {
	return slices.IndexFunc(r.Migrations, func(m Migration) bool { return m.Version == version })
}

// Pending returns the migrations a file at fileVersion still needs, in
// version order.
func (r *Registry) Pending(fileVersion int) []Migration {
	var out []Migration
	for _, m := range r.Migrations {
		if m.Version > fileVersion {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b Migration) int { return a.Version - b.Version })
	return out
}

// NeedsMigration reports whether a file at fileVersion is behind. Files from
// a newer build are never touched.
func (r *Registry) NeedsMigration(fileVersion int) bool {
	return fileVersion < r.CurrentVersion && len(r.Pending(fileVersion)) > 0
}

// Newer reports whether fileVersion was written by a newer schema.
func (r *Registry) Newer(fileVersion int) bool {
	return fileVersion > r.CurrentVersion
}

// Run applies every pending migration and returns the data with the version
// it reached. On failure the version is the last one that succeeded.
func (r *Registry) Run(data []byte, fromVersion int) ([]byte, int, error) {
	version := fromVersion
	for _, m := range r.Pending(fromVersion) {
		slog.Info("applying migration", "version", m.Version, "description", m.Description)
		out, err := m.Upgrade(data)
		if err != nil {
			return nil, version, fmt.Errorf("migration to v%d failed: %w", m.Version, err)
		}
		data, version = out, m.Version
	}
	return data, version, nil
}
