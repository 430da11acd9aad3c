/*
Package release implements the charm release reconciler: the state machine
that promotes tested candidate revisions of an operator bundle to stable.

The processor is stateless and idempotent. On every invocation it rebuilds
the state of each track from the store and the test platform, classifies it,
and performs at most one action per track (start a test run, wait, promote,
or flag for manual intervention), so repeated runs converge without
duplicating side effects.

# Per-track state machine

For each track, the processor queries the candidate and stable revision
matrices of every charm in the bundle. Charms whose candidate channel is
empty or already equals stable contribute their stable matrix and flag no
work. If the assembled bundle is not jointly testable (shape mismatch or a
missing matrix) the track aborts with a CI-failure verdict: the store
answered inconsistently and deciding on partial data is unsafe. If no charm
had pending candidate work the track is unchanged.

Otherwise every (arch, base) cell of the bundle is classified by the test
plan instances matching its release fingerprint:

  - no informative instances -> start a new test run (unless dry-run) with
    a strictly increasing priority from the shared generator
  - any succeeded -> success
  - else any in progress -> in progress
  - else -> failed

Aborted and skipped instances are excluded before classification; a cell
with only aborted instances behaves as if it had none.

# Aggregation and dispatch

Track verdicts follow the cell aggregate: success only when every cell
succeeded and the aggregate is non-empty, failure when any cell failed
(failure dominates in-progress), in progress when any cell is still running,
and CI failure when the aggregate is empty or ambiguous. That last outcome
is surfaced distinctly rather than being treated as success or no-op.

Any error from an external system is caught at the track boundary and
converted to a CI-failure verdict for that track only; the remaining tracks
are always processed.
*/
package release
