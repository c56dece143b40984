// Package log provides loggers for embedding mapsync.
//
// Use the zerolog-backed console logger:
//
//	s, err := mapsync.New(cfg, mapsync.WithLogger(log.NewConsole(os.Stderr, zerolog.InfoLevel)))
//
// or wrap a zerolog.Logger you already have with NewZerolog. Any type with
// Debug, Info, Warn and Error methods taking ...Field satisfies Logger.
package log
