// Package radio exposes readings over a BLE GATT peripheral: one service with
// one readable, notifiable characteristic.
package radio

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"tinygo.org/x/bluetooth"

	"github.com/itohio/gobatt/pkg/link"
	"github.com/itohio/gobatt/pkg/telemetry"
)

// Config names the peripheral and its GATT layout.
type Config struct {
	LocalName          string
	ServiceUUID        string
	CharacteristicUUID string
}

// advertiser is the part of *bluetooth.Advertisement the peripheral uses.
type advertiser interface {
	Start() error
	Stop() error
}

// characteristic is the part of bluetooth.Characteristic the peripheral uses.
type characteristic interface {
	Write(p []byte) (n int, err error)
}

var (
	_ link.Advertiser    = (*Peripheral)(nil)
	_ telemetry.Notifier = (*Peripheral)(nil)
)

// ErrNotStarted is returned by operations on a peripheral that was never started.
var ErrNotStarted = errors.New("radio: peripheral not started")

// Peripheral is a BLE peripheral exposing one read/notify characteristic.
type Peripheral struct {
	mu      sync.Mutex
	adv     advertiser
	char    characteristic
	unwatch func()
}

// New returns an unstarted peripheral, so it can be handed to link.New
// before the radio stack is brought up.
func New() *Peripheral {
	return &Peripheral{}
}

// Start enables the adapter, registers the service, routes connection events
// to h and begins advertising.
func (p *Peripheral) Start(adapter *bluetooth.Adapter, cfg Config, h link.Handler) error {
	serviceUUID, err := bluetooth.ParseUUID(cfg.ServiceUUID)
	if err != nil {
		return fmt.Errorf("invalid service uuid: %w", err)
	}
	charUUID, err := bluetooth.ParseUUID(cfg.CharacteristicUUID)
	if err != nil {
		return fmt.Errorf("invalid characteristic uuid: %w", err)
	}

	if err := adapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable adapter: %w", err)
	}

	adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		dispatch(h, connected)
	})
	unwatch, err := watchConnections(h)
	if err != nil {
		return err
	}

	var char bluetooth.Characteristic
	err = adapter.AddService(&bluetooth.Service{
		UUID: serviceUUID,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: &char,
				UUID:   charUUID,
				Flags:  bluetooth.CharacteristicReadPermission | bluetooth.CharacteristicNotifyPermission,
			},
		},
	})
	if err != nil {
		unwatch()
		return fmt.Errorf("failed to add service: %w", err)
	}

	adv := adapter.DefaultAdvertisement()
	err = adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    cfg.LocalName,
		ServiceUUIDs: []bluetooth.UUID{serviceUUID},
	})
	if err != nil {
		unwatch()
		return fmt.Errorf("failed to configure advertisement: %w", err)
	}

	p.mu.Lock()
	p.adv = adv
	p.char = &char
	p.unwatch = unwatch
	p.mu.Unlock()

	if err := adv.Start(); err != nil {
		return fmt.Errorf("failed to start advertising: %w", err)
	}

	log.Printf("Advertising as %s", cfg.LocalName)
	return nil
}

// Advertise restarts advertising so a new subscriber can attach.
func (p *Peripheral) Advertise() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.adv == nil {
		return ErrNotStarted
	}
	// Stop fails when the stack already stopped advertising on connect.
	_ = p.adv.Stop()
	return p.adv.Start()
}

// Notify sets the characteristic value and notifies the subscriber.
// No acknowledgement is awaited.
func (p *Peripheral) Notify(payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.char == nil {
		return ErrNotStarted
	}
	if _, err := p.char.Write(payload); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// Stop stops advertising and connection tracking.
func (p *Peripheral) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.unwatch != nil {
		p.unwatch()
		p.unwatch = nil
	}
	if p.adv == nil {
		return nil
	}
	return p.adv.Stop()
}

// dispatch forwards a connection change to h.
func dispatch(h link.Handler, connected bool) {
	if connected {
		h.OnConnect()
		return
	}
	h.OnDisconnect()
}
