package bundle

import (
	"fmt"
	"sort"
	"strings"
)

// cell identifies one (architecture, base) slot of a revision matrix.
type cell struct {
	Arch string
	Base string
}

// RevisionMatrix holds the published revision for each (arch, base) pair of
// one charm on one store channel. Rows are architectures, columns are bases.
type RevisionMatrix struct {
	data map[cell]string
}

// NewRevisionMatrix creates an empty revision matrix
func NewRevisionMatrix() *RevisionMatrix {
	return &RevisionMatrix{data: make(map[cell]string)}
}

// Set inserts or overwrites the revision for an (arch, base) cell.
// Arch and base legality is the caller's concern.
func (m *RevisionMatrix) Set(arch, base, revision string) {
	m.data[cell{Arch: arch, Base: base}] = revision
}

// Get returns the revision for an (arch, base) cell, or "" if unset
func (m *RevisionMatrix) Get(arch, base string) string {
	return m.data[cell{Arch: arch, Base: base}]
}

// Archs returns the set of architectures derived from populated cells
func (m *RevisionMatrix) Archs() map[string]bool {
	archs := make(map[string]bool)
	for c := range m.data {
		archs[c.Arch] = true
	}
	return archs
}

// Bases returns the set of bases derived from populated cells
func (m *RevisionMatrix) Bases() map[string]bool {
	bases := make(map[string]bool)
	for c := range m.data {
		bases[c.Base] = true
	}
	return bases
}

// Empty reports whether the matrix holds no cells at all
func (m *RevisionMatrix) Empty() bool {
	return m == nil || len(m.data) == 0
}

// Complete reports whether the matrix has at least one cell and every cell
// holds a non-empty revision.
func (m *RevisionMatrix) Complete() bool {
	if m == nil || len(m.data) == 0 {
		return false
	}
	for _, revision := range m.data {
		if revision == "" {
			return false
		}
	}
	return true
}

// Equal reports cell-wise structural equality with another matrix
func (m *RevisionMatrix) Equal(other *RevisionMatrix) bool {
	if m == nil || other == nil {
		return m == other
	}
	if len(m.data) != len(other.data) {
		return false
	}
	for c, revision := range m.data {
		if other.data[c] != revision {
			return false
		}
	}
	return true
}

// String renders the matrix as a tab-separated table with architecture rows
// and base columns.
func (m *RevisionMatrix) String() string {
	archs := sortedKeys(m.Archs())
	bases := sortedKeys(m.Bases())

	lines := []string{"\t" + strings.Join(bases, "\t")}
	for _, arch := range archs {
		fields := []string{arch}
		for _, base := range bases {
			fields = append(fields, m.Get(arch, base))
		}
		lines = append(lines, strings.Join(fields, "\t"))
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func equalSets(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

var _ fmt.Stringer = (*RevisionMatrix)(nil)
