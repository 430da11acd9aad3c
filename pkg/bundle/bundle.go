package bundle

import (
	"sort"
	"strings"
)

// Bundle aggregates the revision matrices of the charms that must be tested
// together, keyed by charm name. A matrix may be nil until set.
type Bundle struct {
	name     string
	matrices map[string]*RevisionMatrix
}

// New creates an empty bundle with the given name (e.g. "k8s-operator")
func New(name string) *Bundle {
	return &Bundle{
		name:     name,
		matrices: make(map[string]*RevisionMatrix),
	}
}

// Name returns the bundle name
func (b *Bundle) Name() string {
	return b.name
}

// Set assigns the revision matrix for a charm
func (b *Bundle) Set(charm string, matrix *RevisionMatrix) {
	b.matrices[charm] = matrix
}

// Get returns the revision matrix for a charm, or nil if unset
func (b *Bundle) Get(charm string) *RevisionMatrix {
	return b.matrices[charm]
}

// Charms returns the sorted charm names present in the bundle
func (b *Bundle) Charms() []string {
	charms := make([]string, 0, len(b.matrices))
	for charm := range b.matrices {
		charms = append(charms, charm)
	}
	sort.Strings(charms)
	return charms
}

// Archs returns the architecture set of the bundle, taken from any one
// matrix. Only meaningful when the bundle is testable.
func (b *Bundle) Archs() map[string]bool {
	for _, matrix := range b.matrices {
		if matrix != nil {
			return matrix.Archs()
		}
	}
	return map[string]bool{}
}

// Bases returns the base set of the bundle, taken from any one matrix.
// Only meaningful when the bundle is testable.
func (b *Bundle) Bases() map[string]bool {
	for _, matrix := range b.matrices {
		if matrix != nil {
			return matrix.Bases()
		}
	}
	return map[string]bool{}
}

// IsTestable reports whether all matrices in the bundle are present, span
// identical architecture and base sets, and agree on which cells hold a
// revision. Cell coverage is compared in both directions so the result does
// not depend on which matrix is used as the reference.
func (b *Bundle) IsTestable() bool {
	if len(b.matrices) == 0 {
		return false
	}

	var reference *RevisionMatrix
	for _, matrix := range b.matrices {
		if matrix == nil {
			return false
		}
		if reference == nil {
			reference = matrix
		}
	}

	bases := reference.Bases()
	archs := reference.Archs()

	for _, matrix := range b.matrices {
		if !equalSets(matrix.Bases(), bases) || !equalSets(matrix.Archs(), archs) {
			return false
		}
		for base := range bases {
			for arch := range archs {
				filled := reference.Get(arch, base) != ""
				if filled != (matrix.Get(arch, base) != "") {
					return false
				}
			}
		}
	}

	return true
}

// Revisions returns the revision of every charm at an (arch, base) cell,
// keyed by "<charm>_revision" with hyphens replaced by underscores. These
// keys feed the test platform's template variables.
func (b *Bundle) Revisions(arch, base string) map[string]string {
	revisions := make(map[string]string, len(b.matrices))
	for charm, matrix := range b.matrices {
		key := strings.ReplaceAll(charm, "-", "_") + "_revision"
		if matrix != nil {
			revisions[key] = matrix.Get(arch, base)
		} else {
			revisions[key] = ""
		}
	}
	return revisions
}

// Version builds the release fingerprint for an (arch, base) cell by
// concatenating the sorted charm names with their revisions, e.g.
// "k8s-operator-k8s-741-k8s-worker-739". Returns "" if any charm lacks a
// revision at the cell. Identical (cell, revision-set) inputs always yield
// the identical fingerprint regardless of Set ordering.
func (b *Bundle) Version(arch, base string) string {
	charms := b.Charms()
	if len(charms) == 0 {
		return ""
	}

	version := b.name
	for _, charm := range charms {
		matrix := b.matrices[charm]
		if matrix == nil {
			return ""
		}
		revision := matrix.Get(arch, base)
		if revision == "" {
			return ""
		}
		version += "-" + charm + "-" + revision
	}
	return version
}
