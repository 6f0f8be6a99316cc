// Package lock provides mutual exclusion for sync runs.
//
// Local serializes runs inside one process. Redis holds a lease in a shared
// Redis instance so that several replicas never sync the same schema at once.
// A lease expires after its TTL even if the holder crashes.
package lock
