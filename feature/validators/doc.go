// Package validators exposes validator synchronization over HTTP.
//
// It binds the reconciliation engine to the GORM store of a schema, serves
// diff previews from a short lived document cache and runs syncs from a fresh
// read of the configuration source under a per-schema lock.
//
// # Routes
//
//	GET  /validators                   list persisted validators
//	GET  /validators/diff              unified diff and summary
//	POST /validators/sync              apply the configuration (?dry_run=true to preview)
//	GET  /validators/auto-sync         auto-sync toggle state
//	POST /validators/auto-sync/toggle  flip the toggle
//	PUT  /hotkeys/:id/delegate-stake   set one delegate stake percentage
//	PUT  /hotkeys/delegate-stake       set several percentages at once
//
// Every route accepts a schema query parameter: core (default) or
// validator_manager. Delegate stake is only tracked in the core schema.
package validators
