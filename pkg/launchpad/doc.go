// Package launchpad is the code host adapter. It answers which git branch
// feeds a snap track, converges snap build recipes toward a desired
// manifest, and requests recipe rebuilds.
//
// Recipes follow a fixed naming scheme: tip recipes building the
// development head are named <snap>-snap-tip-<flavor>, release recipes are
// named <snap>-snap-<track>-<flavor>. Every flavor except classic builds
// from a generated autoupdate branch.
//
// Authentication uses the credentials file pointed at by LPCREDS; setting
// LPANON enables anonymous read-only access for dry runs.
package launchpad
