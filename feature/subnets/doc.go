// Package subnets keeps the subnet table in line with the subnet configuration document.
//
// The document maps a subnet codename to its metadata. Sync upserts every
// entry by codename in one transaction and never deletes rows; Diff shows the
// same comparison the sync would act on.
//
// # Routes
//
//	GET  /subnets                               list subnets with delegated stake totals
//	GET  /subnets/diff                          unified diff of table and document
//	POST /subnets/sync                          apply the document (?dry_run=true to preview)
//	GET  /subnets/:identifier/dumper-commands   dumper commands by codename or netuid
package subnets
