// Package builds runs single insight builds on the test platform: one
// standalone build per track for a charm revision cell that has not been
// exercised yet. Prior runs are reconstructed from the platform's build
// list by decoding the addon naming scheme
// <snap>-build-<rev>-<arch>-<base>-<track>-<risk>, so repeated invocations
// never test the same revision twice.
package builds
