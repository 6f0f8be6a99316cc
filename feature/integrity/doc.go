// Package integrity provides health checks for the database and the configuration documents.
//
// # Checks Provided
//
//   - Schema: compares the tables of the core and validator_manager schemas with their GORM models (columns, explicit types).
//   - Documents: reads the validators and subnets documents and reports what a sync would reject,
//     such as missing fields, malformed hotkeys, hotkeys listed by two validators or reused netuids.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/documents : Runs the document check.
package integrity
