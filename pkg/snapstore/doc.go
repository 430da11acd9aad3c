// Package snapstore is the thin snap store adapter: channel map queries
// through the public info API, idempotent track creation (a 409 conflict
// means the track already exists and is treated as success), and revision
// releases through snapcraft.
package snapstore
