/*
Package tendril is a dialogue-tree runtime for games: a stateful wrapper around
a branching-script interpreter that turns a stream of parsed dialogue nodes
into a pausable, scrollable, command-triggering, option-branching presentation
consumable frame-by-frame by a game loop.

It separates the script (authored nodes with text, <<commands>> and
[[option|Target]] branches) from presentation state (the clipped line, the
pending command queue, the highlighted option) and from persistence (variables
and visit counts captured as a snapshot). This Hexagonal Architecture lets the
runtime sit behind any frontend: a game engine, a terminal player, an HTTP or
WebSocket service, or an MCP server.

# Concept

The host owns the loop. Every frame it ticks the session to reveal one more
rune of the current line; when the player presses the advance key the host
calls Advance to pull the next piece of the script. Commands embedded in a line
fire exactly when the scroll cursor crosses their position, and the built-in
wait command pauses scrolling on a host-scheduled timer. At a branch point the
session presents options and the host confirms one. Nothing here renders or
reads input; the session only answers questions about what should be on screen.

# Usage

Load a script repository and drive a session:

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/tendril"
	)

	func main() {
		eng, err := tendril.New("./scripts")
		if err != nil {
			log.Fatal(err)
		}

		s, err := eng.Start()
		if err != nil {
			log.Fatal(err)
		}

		for s.IsRunning() {
			// Frame tick: reveal one more rune.
			s.Tick()
			fmt.Print("\r", s.ClippedText())

			if s.IsCommandCalled("playSound") {
				// React to <<playSound ...>> exactly once.
			}

			if s.HasCompleted() {
				if s.IsLineType("options") {
					s.SelectNext()
					s.Confirm()
				} else {
					s.Advance()
				}
			}
		}
	}

Sessions are single-goroutine objects; services guard each one with the
session Manager, which also snapshots state into save slots and restores it.

# Packages

  - pkg/session: the runtime itself (sessions, manager, state codec).
  - pkg/dialogue: shared vocabulary (steps, events, errors, persisted state).
  - pkg/ports: boundaries for interpreters, script sources, stores, schedulers.
  - pkg/runner: a terminal player with interactive, headless and NDJSON modes.
  - pkg/registry, pkg/schema: routing of script commands to typed host handlers.
  - pkg/dsl: a fluent builder for constructing scripts in Go.
  - pkg/persistence/middleware: save-slot encryption and redaction decorators.
  - pkg/adapters/...: script sources and service surfaces (HTTP, WebSocket, MCP).
  - internal/adapters/...: save-slot stores (file, sqlite, redis).
*/
package tendril
