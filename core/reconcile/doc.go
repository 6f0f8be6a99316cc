// Package reconcile synchronizes validator identities, subnets and hotkeys
// from a declarative YAML document into a relational store.
//
// # Architecture
//
// The package consists of four components:
//
// 1. Loader: parses the validators YAML document into an ordered list of
// Record values. Document order is preserved for validators and for the
// subnet hotkey lists of every validator.
//
// 2. Engine: Reconcile applies a list of records to a Store inside a single
// transaction. Any failure rolls back every change made by the invocation.
//
// 3. Diff: renders a unified diff between the persisted and the external
// datasets for human review before an operator confirms a sync.
//
// 4. Cache: TTL cache of fetched documents with stampede protection, used by
// read-only diff views.
//
// # Store
//
// The engine never talks to a database directly. It consumes the Store and Tx
// interfaces, which expose get-or-create, update-or-create, query, delete and
// membership replacement over validators, subnets, external hotkeys and
// validator hotkey assignments. One implementation exists per schema (see
// feature/validators/store).
//
// # Usage Example
//
//	records, err := reconcile.LoadValidators(ctx, fetcher.Fetch, "validators.yaml")
//	if err != nil {
//	    return err
//	}
//	result, err := reconcile.Reconcile(ctx, store, records, reconcile.ModeCore, logger)
//
// # Modes
//
// ModeValidatorManager creates subnets that are referenced by the config but
// missing from the store. ModeCore only resolves existing subnets and silently
// skips unknown codenames.
package reconcile
