// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package itep

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // register the sqlite database/sql driver

	"github.com/itep-tools/itep/gpr"
)

const driver = "sqlite"

// MemoryDatabase is the path of a private in-memory database.
const MemoryDatabase = ":memory:"

// maxBatch is the largest number of genes bound in a single IN query,
// well below SQLite's host parameter limit.
const maxBatch = 500

var _ gpr.Source = (*DB)(nil)

// ErrNoDatabase is returned by Open when the database file does not exist.
var ErrNoDatabase = errors.New("itep: database not found")

// DB is a handle to an ITEP database.
type DB struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens the ITEP database at path. The database must already exist
// unless path is MemoryDatabase. A nil log discards query logging.
func Open(ctx context.Context, path string, log *zap.Logger) (*DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if path != MemoryDatabase {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoDatabase, err)
		}
	}
	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("itep: failed to open database: %w", err)
	}
	// A single connection keeps an in-memory database alive and shared.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("itep: failed to open database: %w", err)
	}
	log.Debug("opened database", zap.String("path", path))
	return &DB{db: db, log: log}, nil
}

// Close closes the database.
func (d *DB) Close() error { return d.db.Close() }

// Organisms returns the organisms with genes clustered in run, sorted
// by organism.
func (d *DB) Organisms(ctx context.Context, run string) ([]string, error) {
	return d.column(ctx,
		`SELECT DISTINCT organism FROM clusterorgs WHERE runid = ? ORDER BY organism`, run)
}

// ClusterGenes returns the (cluster, gene) pairs of run for the given
// genes, ordered by cluster ID and then gene.
func (d *DB) ClusterGenes(ctx context.Context, run string, genes []string) ([]gpr.ClusterGene, error) {
	type pair struct {
		cluster int64
		gene    string
	}
	var pairs []pair
	for start := 0; start < len(genes); start += maxBatch {
		end := start + maxBatch
		if end > len(genes) {
			end = len(genes)
		}
		batch := genes[start:end]

		args := make([]interface{}, 0, len(batch)+1)
		args = append(args, run)
		for _, g := range batch {
			args = append(args, g)
		}
		q := `SELECT clusterid, geneid FROM clusters WHERE runid = ? AND geneid IN (?` +
			strings.Repeat(",?", len(batch)-1) + `)`

		rows, err := d.db.QueryContext(ctx, q, args...)
		if err != nil {
			return nil, fmt.Errorf("itep: cluster query failed: %w", err)
		}
		for rows.Next() {
			var p pair
			if err := rows.Scan(&p.cluster, &p.gene); err != nil {
				rows.Close()
				return nil, fmt.Errorf("itep: cluster query failed: %w", err)
			}
			pairs = append(pairs, p)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("itep: cluster query failed: %w", err)
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].cluster != pairs[j].cluster {
			return pairs[i].cluster < pairs[j].cluster
		}
		return pairs[i].gene < pairs[j].gene
	})

	cg := make([]gpr.ClusterGene, len(pairs))
	for i, p := range pairs {
		cg[i] = gpr.ClusterGene{Cluster: strconv.FormatInt(p.cluster, 10), Gene: p.gene}
	}
	d.log.Debug("queried clusters", zap.String("run", run), zap.Int("genes", len(genes)), zap.Int("pairs", len(cg)))
	return cg, nil
}

// ClusterOrganisms returns the organisms with a gene in the cluster of
// run, sorted by organism.
func (d *DB) ClusterOrganisms(ctx context.Context, run, cluster string) ([]string, error) {
	id, err := strconv.ParseInt(cluster, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("itep: invalid cluster ID %q: %w", cluster, err)
	}
	return d.column(ctx,
		`SELECT DISTINCT organism FROM clusterorgs WHERE runid = ? AND clusterid = ? ORDER BY organism`, run, id)
}

// ContigIDs returns the ITEP contig IDs of the organism, sorted.
func (d *DB) ContigIDs(ctx context.Context, organism string) ([]string, error) {
	return d.column(ctx,
		`SELECT contig_mod FROM contigs WHERE organismid = ? ORDER BY contig_mod`, organism)
}

func (d *DB) column(ctx context.Context, q string, args ...interface{}) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("itep: query failed: %w", err)
	}
	defer rows.Close()
	var s []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("itep: query failed: %w", err)
		}
		s = append(s, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("itep: query failed: %w", err)
	}
	return s, nil
}
