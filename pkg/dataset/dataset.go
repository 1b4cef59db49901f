// Package dataset ingests the Irish CER 22-week household power-profile
// format (original_source/DiCOMO/irishData.{h,cpp}). spec.md §1 scopes
// this collaborator down to "only the shape (rows × cols of real-valued
// watts) is relevant" — this package implements exactly that shape,
// cached in SQLite so a batch of per-sample solves over the 22-week
// series doesn't re-parse the source file on every iteration.
package dataset

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mzangs/feedersolve/pkg/circuit"
)

// Config mirrors the original IrishData constructor's parameters.
type Config struct {
	// ProfilesInColumn: for the 22-week CER set, each column of the
	// source file is one house's profile and each row is one time
	// sample (true). If false, each row is one house's whole profile.
	ProfilesInColumn bool
	// IgnoreCols/IgnoreRows skip leading header columns/rows.
	IgnoreCols int
	IgnoreRows int
	// Scale converts a raw sample into watts (2000 for the CER set:
	// each sample is kWh over a half-hour window).
	Scale float64
}

// DefaultCERConfig returns the configuration for the 22-week Irish CER
// dataset format (original_source/DiCOMO/irishData.h's defaults).
func DefaultCERConfig() Config {
	return Config{ProfilesInColumn: true, IgnoreCols: 2, IgnoreRows: 3, Scale: 2000}
}

// ProfileSource is the external collaborator contract spec.md §1 leaves
// unspecified beyond its shape: a houses × samples matrix of watts.
type ProfileSource interface {
	DataSize() (houses, samples int)
	SampleForHouse(delay, house int) (float64, error)
	Close() error
}

// Cache is a ProfileSource backed by a SQLite cache of a parsed CSV
// file, so the 22-week series is scanned once rather than once per
// solved sample.
type Cache struct {
	db      *sql.DB
	houses  int
	samples int
}

var _ ProfileSource = (*Cache)(nil)

// LoadCSV parses path per cfg and caches it in a SQLite database at
// cachePath (use ":memory:" for an ephemeral cache).
func LoadCSV(path, cachePath string, cfg Config) (*Cache, error) {
	profiles, err := parseCSV(path, cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", cachePath)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening cache: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS profiles (
		house INTEGER NOT NULL,
		sample INTEGER NOT NULL,
		watts REAL NOT NULL,
		PRIMARY KEY (house, sample)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("dataset: creating cache schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("dataset: starting cache load transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO profiles (house, sample, watts) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		db.Close()
		return nil, fmt.Errorf("dataset: preparing cache insert: %w", err)
	}
	for house, series := range profiles {
		for sample, watts := range series {
			if _, err := stmt.Exec(house, sample, watts); err != nil {
				stmt.Close()
				tx.Rollback()
				db.Close()
				return nil, fmt.Errorf("dataset: caching sample: %w", err)
			}
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		db.Close()
		return nil, fmt.Errorf("dataset: committing cache load: %w", err)
	}

	houses := len(profiles)
	samples := 0
	if houses > 0 {
		samples = len(profiles[0])
	}
	return &Cache{db: db, houses: houses, samples: samples}, nil
}

// DataSize returns the matrix's (houses, samples) extent.
func (c *Cache) DataSize() (houses, samples int) {
	return c.houses, c.samples
}

// SampleForHouse returns the power sample at (delay, house), or an
// OutOfBounds error if either index lies outside the ingested matrix
// (spec §7).
func (c *Cache) SampleForHouse(delay, house int) (float64, error) {
	if delay < 0 || delay >= c.samples || house < 0 || house >= c.houses {
		return 0, &circuit.Error{
			Kind:    circuit.OutOfBounds,
			Message: fmt.Sprintf("sample %d / house %d outside matrix bounds (%d samples, %d houses)", delay, house, c.samples, c.houses),
		}
	}
	var watts float64
	row := c.db.QueryRow(`SELECT watts FROM profiles WHERE house = ? AND sample = ?`, house, delay)
	if err := row.Scan(&watts); err != nil {
		return 0, fmt.Errorf("dataset: reading cached sample: %w", err)
	}
	return watts, nil
}

// Close releases the cache's SQLite handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// parseCSV reproduces original_source/DiCOMO/irishData.cpp's loadData:
// skip cfg.IgnoreRows header rows and cfg.IgnoreCols leading columns per
// row, scale each remaining value by cfg.Scale, and lay the result out
// as profiles[house][sample].
func parseCSV(path string, cfg Config) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening %s: %w", path, err)
	}
	defer f.Close()

	var rows [][]float64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	rowsSeen := 0
	for scanner.Scan() {
		if rowsSeen < cfg.IgnoreRows {
			rowsSeen++
			continue
		}
		line := scanner.Text()
		fields := splitFields(line)
		if len(fields) <= cfg.IgnoreCols {
			continue
		}
		values := make([]float64, 0, len(fields)-cfg.IgnoreCols)
		for _, field := range fields[cfg.IgnoreCols:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				continue
			}
			values = append(values, v*cfg.Scale)
		}
		rows = append(rows, values)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: reading %s: %w", path, err)
	}

	if !cfg.ProfilesInColumn {
		return rows, nil
	}

	if len(rows) == 0 {
		return nil, nil
	}
	houseCount := len(rows[0])
	profiles := make([][]float64, houseCount)
	for h := range profiles {
		profiles[h] = make([]float64, 0, len(rows))
	}
	for _, row := range rows {
		for h, v := range row {
			if h >= houseCount {
				continue
			}
			profiles[h] = append(profiles[h], v)
		}
	}
	return profiles, nil
}

// splitFields splits a line on comma or tab, mirroring the original
// parser's delimiter handling.
func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == '\t'
	})
}
