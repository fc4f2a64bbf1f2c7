// Package models defines the core domain records for divvy.
//
// Records reference each other by id strings only; there is no in-memory
// object graph. Membership, share and contact lookups always go through the
// storage layer. Enumerated fields are closed string types so they round-trip
// through the database and JSON unchanged.
package models
