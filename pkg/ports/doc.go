// Package ports defines the interfaces between the Parley core and its
// external collaborators: the NLU provider, entity handlers, the fulfillment
// layer and session persistence. Adapters implement these; the engine only
// ever sees the interfaces.
package ports
