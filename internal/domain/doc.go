// Package domain holds the core types and interfaces of the application:
// the Stream aggregate and its lifecycle, product lineups, the append-only
// event log, clips, and the advisory liveness hint. Persistence and transport
// concerns live in adapters that implement the interfaces defined here.
package domain
