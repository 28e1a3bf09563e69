// Package domain contains the core value types of the Parley engine:
// conversation sessions, intent instances, slots, NLU results, actions and
// fulfillment contracts. It has no dependencies on adapters or transport.
package domain
