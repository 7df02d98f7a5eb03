package link

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingAdvertiser struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (a *countingAdvertiser) Advertise() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return a.err
}

func (a *countingAdvertiser) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func TestConnection_InitialState(t *testing.T) {
	c := New(nil)
	assert.False(t, c.IsConnected())
	assert.Equal(t, Disconnected, c.State())
}

func TestConnection_ConnectThenDisconnect(t *testing.T) {
	adv := &countingAdvertiser{}
	c := New(adv)

	c.OnConnect()
	assert.True(t, c.IsConnected())
	assert.Equal(t, 0, adv.count())

	c.OnDisconnect()
	assert.False(t, c.IsConnected())
	assert.Equal(t, Disconnected, c.State())
	assert.Equal(t, 1, adv.count())
}

func TestConnection_DisconnectTwiceAdvertisesTwice(t *testing.T) {
	adv := &countingAdvertiser{}
	c := New(adv)

	c.OnDisconnect()
	c.OnDisconnect()

	assert.False(t, c.IsConnected())
	assert.Equal(t, 2, adv.count())
}

func TestConnection_ConnectIsIdempotent(t *testing.T) {
	c := New(nil)
	c.OnConnect()
	c.OnConnect()
	assert.True(t, c.IsConnected())
}

func TestConnection_AdvertiseErrorIsNotFatal(t *testing.T) {
	adv := &countingAdvertiser{err: errors.New("adapter busy")}
	c := New(adv)

	c.OnConnect()
	c.OnDisconnect()

	assert.False(t, c.IsConnected())
	assert.Equal(t, 1, adv.count())
}

func TestConnection_NilAdvertiser(t *testing.T) {
	c := New(nil)
	assert.NotPanics(t, c.OnDisconnect)
}

func TestConnection_AdvertiserFunc(t *testing.T) {
	calls := 0
	c := New(AdvertiserFunc(func() error {
		calls++
		return nil
	}))
	c.OnDisconnect()
	assert.Equal(t, 1, calls)
}

// Events from another goroutine while the tick loop polls.
func TestConnection_ConcurrentEvents(t *testing.T) {
	adv := &countingAdvertiser{}
	c := New(adv)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			c.OnConnect()
			c.OnDisconnect()
		}
	}()

	for i := 0; i < 100; i++ {
		s := c.State()
		assert.True(t, s == Connected || s == Disconnected)
	}
	wg.Wait()

	assert.False(t, c.IsConnected())
	assert.Equal(t, 100, adv.count())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "unknown", State(7).String())
}
