// Package memoryengine provides in-memory implementations of the reactor
// collaborator contracts: an EventStore acting as both event source and
// event sink, and a position Tracker.
//
// Both are safe for concurrent use and intended for tests, local
// development and default wiring; durability is provided by the
// postgresengine package.
package memoryengine
