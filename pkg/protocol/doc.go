/*
Package protocol defines the wire contract of the Rigwire bridge.

Every transport (TCP, HTTP, MCP) speaks the same payload shapes:

	Request:  {"type": "<command_name>", "params": { ... }}
	Response: {"status": "success"|"error", "result"?: {...}, "error"?: "..."}

Framing is transport-specific (newline-delimited JSON on TCP, one request
per HTTP POST); the shapes above are the contract.

The package also defines the standard parameters recognized across mutating
commands (dry_run, verbosity, on_error, max_operations, auto_compile), the
tagged operation variants consumed by the batch engine, and the result
shapes returned to clients.
*/
package protocol
