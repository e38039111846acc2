// Package snapshot turns decoded feed payloads into canonical snapshots and
// compares successive snapshots.
//
// This package handles:
//   - Normalizing street entries into records sorted by a stable key
//   - Fingerprinting a normalized snapshot with SHA-256
//   - Detecting new and updated segments between two snapshots
//   - Filtering records and computing speed statistics for exports
//
// A segment's key is its OpenLR location code, or its numeric id when the
// code is missing. Comparisons walk both sorted sequences in lockstep, so
// results never depend on map iteration order.
package snapshot
