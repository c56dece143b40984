// Package domain contains the core entities and value objects for mapsync.
//
// This package is the innermost layer. It has no dependencies on
// infrastructure concerns (HTTP, file system, logging) and holds only the
// naming rules and data shapes the rest of the module agrees on.
//
// # Entities
//
//   - [WorkItem]: a map identifier queued for download
//   - [Inventory]: the set of map identifiers already present locally
//   - [Session]: ephemeral state of a single sync run
//   - [Summary]: the final report of a sync run
//
// Map identifiers are compared case-insensitively but keep the casing the
// remote index used, since some FastDL hosts serve from case-sensitive file
// systems.
package domain
