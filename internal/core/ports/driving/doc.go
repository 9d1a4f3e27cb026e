// Package driving defines the interfaces through which the outside world
// calls INTO the core (primary/inbound ports in hexagonal architecture).
//
// The CLI is the only driving adapter in this repository; an external
// conversational agent is expected to consume RetrievalService the same
// way.
package driving
