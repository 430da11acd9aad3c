// Package charmhub is the thin Charmhub adapter: revision matrix queries
// through the public refresh API, charm promotion through charmcraft, and
// macaroon extraction from CHARMCRAFT_AUTH. It carries no release decision
// logic; the reconcilers in pkg/release consume it through their own narrow
// interfaces.
package charmhub
