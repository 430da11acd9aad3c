// Package kube reads the upstream Kubernetes release feed: semantically
// ordered release tags, the latest stable release, per-minor latest
// releases, and the pre-release bookkeeping behind the auto-update
// branches.
package kube
