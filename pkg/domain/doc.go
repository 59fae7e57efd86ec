/*
Package domain defines the core types shared across the Rigwire bridge:
stable node/pin references, graph domain descriptors, node snapshots, and
the sentinel errors that the factories and engine agree on.

These types are transport-agnostic. The wire-level shapes live in
pkg/protocol; the interfaces that hosts implement live in pkg/ports.
*/
package domain
