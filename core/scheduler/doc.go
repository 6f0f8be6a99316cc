// Package scheduler runs periodic jobs on cron specs with a seconds field.
//
// Panics inside a job are recovered and logged. Each run receives a context
// bounded by the configured run timeout, derived from the scheduler's parent
// context so that shutdown cancels in-flight runs.
package scheduler
