// Package link tracks whether a wireless subscriber is attached.
package link

import (
	"log"
	"sync/atomic"
)

// State is the connection state of the wireless peer.
type State uint32

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Handler receives connection lifecycle events from the radio stack.
// Calls may arrive on any goroutine.
type Handler interface {
	OnConnect()
	OnDisconnect()
}

// Advertiser re-arms discoverability so a new subscriber can attach.
type Advertiser interface {
	Advertise() error
}

// AdvertiserFunc adapts a function to Advertiser.
type AdvertiserFunc func() error

// Advertise calls f.
func (f AdvertiserFunc) Advertise() error { return f() }

var _ Handler = (*Connection)(nil)

// Connection is the single source of truth for "is a subscriber attached".
// The state is one atomic word so the tick loop never observes a torn value.
type Connection struct {
	state atomic.Uint32
	adv   Advertiser
}

// New returns a Connection in the Disconnected state. adv may be nil.
func New(adv Advertiser) *Connection {
	return &Connection{adv: adv}
}

// OnConnect marks the peer as connected.
func (c *Connection) OnConnect() {
	c.state.Store(uint32(Connected))
	log.Printf("Subscriber connected")
}

// OnDisconnect marks the peer as disconnected and restarts advertising.
// Advertising is restarted on every call, even if already disconnected.
func (c *Connection) OnDisconnect() {
	c.state.Store(uint32(Disconnected))
	log.Printf("Subscriber disconnected, restarting advertising")

	if c.adv == nil {
		return
	}
	if err := c.adv.Advertise(); err != nil {
		log.Printf("Failed to restart advertising: %v", err)
	}
}

// IsConnected reports whether a subscriber is attached. It never blocks.
func (c *Connection) IsConnected() bool {
	return c.State() == Connected
}

// State returns the current state.
func (c *Connection) State() State {
	return State(c.state.Load())
}
