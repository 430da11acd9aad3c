/*
Package promote implements the snap promotion reconciler: the state machine
that walks every (track, architecture) cell of the store channel graph and
decides whether the revision there has matured enough to move one step up
the risk ladder.

# Decision rules

For a cell at risk R with next risk R':

  - Dwell: the revision is promotable once it has sat at R for the
    configured number of days and promoting it would actually change the
    revision at R'.
  - Supersession: on edge only, a newer build whose version differs from the
    one at the edge target is promoted early instead of waiting out the
    dwell timer.
  - First stable: if R' is stable and the track has no stable channel yet,
    the cell emits a manual-approval notice rather than a proposal. The
    first stable release of every track requires external sign-off;
    follow-up patches do not.

The "latest" track and any track or architecture matching the configured
ignore lists (exact string or regular expression) are skipped.

Each proposal carries the upgrade-test source channels: the next risk on the
same track, the most mature channel above it on the same track, and the most
mature channel of the prior minor track, with self-upgrades filtered out.

Cells decide independently; there is no track-level collapse at this layer.
The reconciler performs no side effects itself; it produces Proposal
records for the release workflow to execute.
*/
package promote
