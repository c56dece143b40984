// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// Ports are the boundaries between the sync core and the outside world. They
// define what the application needs from external systems without specifying
// how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [Remote]: fetches the FastDL index and map archives
//   - [MapStore]: lists, writes and removes files in the maps directory
//   - [PendingFile]: an exclusive write that becomes visible on Commit
//   - [Extractor]: decompresses an archive stream
//   - [Logger]: structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with the file
// system, net/http and zerolog.
package ports
