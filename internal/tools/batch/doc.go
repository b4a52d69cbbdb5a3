// Package batch provides utilities for tools that operate on one or many
// message IDs in a single call: parsing string-or-array parameters,
// running per-item operations with partial-failure containment, and
// formatting the aggregated results.
package batch
