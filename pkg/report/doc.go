// Package report writes the run's result artifacts: the per-track verdict
// file consumed by release automation and the free-text dump of prior
// insight builds.
package report
