/*
Package bundle models the revision matrices of charms that are tested and
released together.

For each (charm, channel, arch, base) tuple there is at most one published
revision in the store. A RevisionMatrix collects the revisions of one charm
on one channel across all (arch, base) cells. For example, track 1.32 of the
k8s charm can have the following matrix on the candidate risk level:

		20.04   22.04   24.04
	amd64   741     742     743
	arm64   736     748     750

A Bundle aggregates one matrix per charm (e.g. k8s and k8s-worker for the
k8s-operator bundle; not to be confused with charm bundles). The bundle is
testable only when every matrix is present, the matrices span identical
architecture and base sets, and they agree cell by cell on where revisions
exist. Partial coverage would produce test runs that exercise mismatched
charm combinations, so it is rejected outright.

Bundle.Version derives the release fingerprint for one cell: a deterministic
string over the sorted charm names and their revisions. The fingerprint is
the correlation key used to find existing test-plan instances for a cell, so
it must be stable under insertion order and change whenever any revision
changes.

Matrices are built fresh per store query, are never mutated after population
by convention, and are discarded at the end of a run.
*/
package bundle
