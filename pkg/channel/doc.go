/*
Package channel models snap store channels: release tracks, the ordered
risk ladder, and the per-architecture channel graph returned by the store.

A channel is a track/risk pair ("1.32/candidate") identifying one
publishable slot. Risk levels form a strict total order

	edge < beta < candidate < stable

and promotion always moves a revision one step up the ladder; stable is
terminal. Track names parse as major.minor with an optional trailing
qualifier ("1.31-classic"); Track.Prior derives the preceding minor track,
which the promotion reconciler uses to build cross-track upgrade tests.

Graph is the reconciler's read model of the store: every (track, risk,
architecture) entry the store currently publishes, grouped by architecture
because promotion decisions are made independently per architecture.
*/
package channel
