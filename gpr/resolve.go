// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpr

import (
	"context"
	"fmt"
)

// ClusterGene is a (cluster, gene) membership pair.
type ClusterGene struct {
	Cluster string
	Gene    string
}

// Source is a store of gene clustering results.
type Source interface {
	// Organisms returns the organisms clustered in run.
	Organisms(ctx context.Context, run string) ([]string, error)

	// ClusterGenes returns the clusters of run that contain any of
	// the given genes, paired with the matching gene.
	ClusterGenes(ctx context.Context, run string, genes []string) ([]ClusterGene, error)

	// ClusterOrganisms returns the organisms with at least one gene
	// in the cluster.
	ClusterOrganisms(ctx context.Context, run, cluster string) ([]string, error)
}

// Cluster is a gene cluster restricted to the genes named in a set of GPRs.
type Cluster struct {
	ID        string
	Genes     []Gene
	Organisms []string

	members map[string]bool
}

// Contains returns whether org has a gene in the cluster.
func (c *Cluster) Contains(org string) bool { return c.members[org] }

// Resolution holds the clusters and organisms relevant to a gene set
// for a single clustering run.
type Resolution struct {
	Run string

	// Organisms is the column order of any matrix built from
	// the Resolution.
	Organisms []string

	// Clusters is in the order clusters were first returned by
	// the Source.
	Clusters []*Cluster
}

// Resolve queries src for the organisms of run and the clusters holding
// genes. The organism membership of each cluster is queried once.
func Resolve(ctx context.Context, src Source, run string, genes []Gene) (*Resolution, error) {
	orgs, err := src.Organisms(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("gpr: failed to get organisms for run %q: %w", run, err)
	}
	ids := make([]string, len(genes))
	for i, g := range genes {
		ids[i] = string(g)
	}
	pairs, err := src.ClusterGenes(ctx, run, ids)
	if err != nil {
		return nil, fmt.Errorf("gpr: failed to get clusters for run %q: %w", run, err)
	}

	res := &Resolution{Run: run, Organisms: orgs}
	byID := make(map[string]*Cluster)
	seen := make(map[ClusterGene]bool)
	for _, p := range pairs {
		c, ok := byID[p.Cluster]
		if !ok {
			members, err := src.ClusterOrganisms(ctx, run, p.Cluster)
			if err != nil {
				return nil, fmt.Errorf("gpr: failed to get organisms for cluster %s in run %q: %w", p.Cluster, run, err)
			}
			c = &Cluster{ID: p.Cluster, Organisms: members, members: make(map[string]bool, len(members))}
			for _, o := range members {
				c.members[o] = true
			}
			byID[p.Cluster] = c
			res.Clusters = append(res.Clusters, c)
		}
		if !seen[p] {
			seen[p] = true
			c.Genes = append(c.Genes, Gene(p.Gene))
		}
	}
	return res, nil
}

// Domain returns an Assignment holding every clustered gene as absent.
func (r *Resolution) Domain() Assignment {
	a := make(Assignment)
	for _, c := range r.Clusters {
		for _, g := range c.Genes {
			a[g] = false
		}
	}
	return a
}

// Assignment returns the gene presence for org. A gene is present if any
// cluster containing it also contains org.
func (r *Resolution) Assignment(org string) Assignment {
	a := r.Domain()
	for _, c := range r.Clusters {
		if !c.Contains(org) {
			continue
		}
		for _, g := range c.Genes {
			a[g] = true
		}
	}
	return a
}
