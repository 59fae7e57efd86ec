/*
Package rigwire is a command-and-control bridge for driving a live
node-graph editing environment from external clients.

Clients send newline-delimited JSON commands over TCP (or the same
envelope over HTTP or MCP). Every command, mutation or query, executes on
a single owner goroutine, because the underlying graph model is only safe
to touch from one thread. The bridge serializes commands, applies ordered
mutation batches with rollback on failure, and manages which asset holds
the editing focus.

# Concept

Five graph domains (logic, shading, motion, layout, effect) share one
operation vocabulary. A GraphFactory per domain translates the shared
operations into domain calls; a Registry resolves which factory serves a
given graph. The batch engine records an undo closure per applied
operation so a failing batch can be unwound in reverse order.

# Usage

Construct a Bridge over an environment, run its owner loop on a dedicated
goroutine, and point one or more transports at its router.

	package main

	import (
		"context"
		"log"

		"github.com/rigwire/rigwire"
		"github.com/rigwire/rigwire/pkg/adapters/memory"
	)

	func main() {
		env := memory.NewEnv()
		bridge, err := rigwire.New(env,
			rigwire.WithFactories(memory.NewDefaultFactories(env)...),
		)
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		go func() {
			if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
				log.Fatal(err)
			}
		}()

		// Wire a transport, e.g. internal/adapters/tcp, at bridge.Router().
	}
*/
package rigwire
