// Package log provides the logging abstraction used by atrng components.
//
// Library code logs through the [Logger] interface so that embedding
// applications decide where output goes. A zerolog adapter and a no-op
// logger are provided.
//
// # Usage
//
//	logger := log.NewZerologAdapter(os.Stderr, zerolog.InfoLevel)
//
// Or discard everything (the library default):
//
//	logger := log.NewNoopLogger()
package log
