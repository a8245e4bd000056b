// Package domain contains the core value types and errors for atrng.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (network, file system, logging) and
// contains only pure logic.
//
// # Values
//
//   - [Digest]: the 64-byte SHA-512 digest sent to the collection endpoint
//   - [Payload]: caller-supplied data, either UTF-8 text or raw bytes
//
// # Design Principles
//
// Domain values are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
