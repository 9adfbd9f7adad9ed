// Package database provides the PostgreSQL-backed repositories for streams,
// product lineups, the append-only event log, and clips, plus connection and
// migration plumbing.
package database
