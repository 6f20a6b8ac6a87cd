// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package itep

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// schema is the subset of the ITEP schema used by this package.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS organisms (
		organism TEXT,
		organismid TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS clusters (
		runid TEXT,
		clusterid INTEGER,
		geneid TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS clusterorgs (
		runid TEXT,
		clusterid INTEGER,
		organism TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS contigs (
		contig_mod TEXT,
		organismid TEXT,
		seq TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS clustergeneidx ON clusters (runid, geneid)`,
	`CREATE INDEX IF NOT EXISTS clusterorgsidx ON clusterorgs (runid, clusterid)`,
	`CREATE INDEX IF NOT EXISTS contigorgidx ON contigs (organismid)`,
}

// Create creates a new database file at path holding an empty schema.
// It is an error for the file to already exist.
func Create(ctx context.Context, path string, log *zap.Logger) (*DB, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("itep: failed to create database: %w", err)
	}
	f.Close()
	db, err := Open(ctx, path, log)
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CreateSchema creates the tables used by this package if they do not
// already exist.
func (d *DB) CreateSchema(ctx context.Context) error {
	for _, s := range schema {
		if _, err := d.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("itep: failed to create schema: %w", err)
		}
	}
	return nil
}

// AddCluster records that the given genes form cluster id of run, and
// that the cluster holds genes of the given organisms.
func (d *DB) AddCluster(ctx context.Context, run string, id int64, organisms []string, genes ...string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("itep: failed to add cluster: %w", err)
	}
	defer tx.Rollback()
	for _, g := range genes {
		_, err := tx.ExecContext(ctx, `INSERT INTO clusters (runid, clusterid, geneid) VALUES (?, ?, ?)`, run, id, g)
		if err != nil {
			return fmt.Errorf("itep: failed to add cluster gene: %w", err)
		}
	}
	for _, o := range organisms {
		_, err := tx.ExecContext(ctx, `INSERT INTO clusterorgs (runid, clusterid, organism) VALUES (?, ?, ?)`, run, id, o)
		if err != nil {
			return fmt.Errorf("itep: failed to add cluster organism: %w", err)
		}
	}
	return tx.Commit()
}

// AddContig records an ITEP contig ID for the organism.
func (d *DB) AddContig(ctx context.Context, organism, contig, seq string) error {
	_, err := d.db.ExecContext(ctx, `INSERT INTO contigs (contig_mod, organismid, seq) VALUES (?, ?, ?)`, contig, organism, seq)
	if err != nil {
		return fmt.Errorf("itep: failed to add contig: %w", err)
	}
	return nil
}
