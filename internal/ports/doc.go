// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [Dialer]: Opens a real-time channel to the collection endpoint
//   - [Channel]: An open real-time channel that emits named binary events
//   - [EntropyFetcher]: Reads raw bytes from the remote entropy source
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement these interfaces
// with concrete implementations (Socket.IO over WebSocket, HTTP, etc.).
package ports
