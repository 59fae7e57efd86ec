/*
Package ports defines the driven ports (interfaces) for the Rigwire bridge.

These interfaces decouple the command surface from the owning editing
environment, allowing the bridge to drive an embedded host editor or the
built-in in-memory environment interchangeably.

# Key Interfaces

  - GraphFactory: the uniform node/pin surface one graph domain implements.
  - Environment: asset lifecycle (open, save, close, recompile) owned by the host.
  - AuditSink: optional destination for per-command audit entries.
*/
package ports
