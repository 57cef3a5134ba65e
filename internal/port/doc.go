// Package port implements host port probing and resolution for the
// stackup CLI.
//
// Every service of the development environment (app runtime, primary and
// test database, cache, web server) has a preferred port and a fallback
// range. The Resolver returns the preferred port when nothing listens on
// it; otherwise it scans the range in ascending order from its minimum and
// returns the first free port:
//
//	preferred free        -> preferred
//	preferred in use      -> lowest free port in [min, max]
//	whole range in use    -> *ExhaustedError (fatal)
//
// Probing is a TCP connect against localhost (Scanner). The Resolver keeps
// no memory between calls; Plan derives the test database range from the
// confirmed primary database port to keep the two apart.
package port
