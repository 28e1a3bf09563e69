/*
Package parley is a deterministic dialog orchestration engine for building
goal-oriented conversational agents.

It separates the bot definition (intents, slots, prompts, limits) from the
conversation state (the session) and from side-effects (NLU, fulfillment,
storage). This hexagonal architecture lets the same engine sit behind a CLI,
an HTTP server, or an MCP tool surface.

# Concept

A conversation is a stack of intents. The user's top-ranked intent activates;
an interruption defers the active intent and activates the new one, bounded
by a configurable depth; completing or aborting the top of the stack resumes
the most recently deferred intent with its slot values intact. Within an
intent, slots are collected in declaration order, optionally confirmed with a
follow-up question, and validated by entity handlers. Three attempt limits
(per-question re-asks, unproductive turns, repeat requests) bound every loop
a confused conversation can enter.

# Key Features

  - Deterministic turns: same session, same input, same reply, including
    response variant rotation.
  - Pluggable recognition: a keyword matcher for tests and offline bots, a
    LUIS-style HTTP client, or any ports.Recognizer.
  - Session persistence: in-memory or Redis stores, with optional
    distributed locking for multi-replica deployments.
  - Fulfillment dispatch: completed intents POST their slot data to a
    configured endpoint, with bounded in-turn retries.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/parleybot/parley"
	)

	func main() {
		bot, err := parley.Load("bot.yaml")
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		reply, err := bot.Say(ctx, "session-123", "I would like a pizza")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(reply.Text())
	}

Use Converse for full control over the input, Trigger to inject a resolved
intent without recognition, and the pkg/scenario runner to script whole
conversations in YAML.
*/
package parley
