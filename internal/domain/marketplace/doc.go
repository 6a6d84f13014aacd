// Package marketplace holds the seller facts fetched from the marketplace
// statistics API: orders and sales, which are immutable event facts written
// at most once per dedup key, and stock snapshots, which are mutable current
// state overwritten by the latest write.
package marketplace
