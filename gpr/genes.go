// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpr

import (
	"errors"
	"regexp"
	"strings"

	"github.com/biogo/store/llrb"
)

// Gene is a normalised gene identifier, fig|<digits>.<digits>.peg.<digits>.
type Gene string

// GenePattern matches gene identifiers as they are stored in the cluster
// database.
var GenePattern = regexp.MustCompile(`fig\|\d+\.\d+\.peg\.\d+`)

// ErrNoGenes is returned by Genes when no GPR in a table contains a
// correctly formatted gene identifier.
var ErrNoGenes = errors.New("gpr: no genes with the expected fig|<org>.peg.<n> format found - gene IDs must match those in the database")

type geneKey Gene

func (g geneKey) Compare(c llrb.Comparable) int {
	return strings.Compare(string(g), string(c.(geneKey)))
}

// Genes returns the sorted set of gene identifiers referenced by the GPRs
// in t. The warn function, if not nil, is called once for each distinct GPR
// that holds no gene identifier; such GPRs contribute nothing to the set.
// If no genes are found at all, Genes returns ErrNoGenes.
func Genes(t *Table, warn func(reaction, gpr string)) ([]Gene, error) {
	var (
		set    llrb.Tree
		warned = make(map[string]bool)
	)
	for _, r := range t.Reactions {
		for _, g := range r.GPRs {
			found := GenePattern.FindAllString(g, -1)
			if len(found) == 0 {
				if warn != nil && !warned[g] {
					warned[g] = true
					warn(r.ID, g)
				}
				continue
			}
			for _, id := range found {
				set.Insert(geneKey(id))
			}
		}
	}
	if set.Len() == 0 {
		return nil, ErrNoGenes
	}

	genes := make([]Gene, 0, set.Len())
	set.Do(func(c llrb.Comparable) (done bool) {
		genes = append(genes, Gene(c.(geneKey)))
		return
	})
	return genes, nil
}
