//go:build linux && !baremetal

package radio

import (
	"fmt"
	"log"

	"github.com/godbus/dbus/v5"

	"github.com/itohio/gobatt/pkg/link"
)

// watchConnections follows BlueZ device connections on the system bus.
// BlueZ reports central connections to a peripheral only as Device1
// property changes, so the adapter's connect handler never fires here.
func watchConnections(h link.Handler) (func(), error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}

	err = conn.AddMatchSignal(
		dbus.WithMatchInterface(propertiesIface),
		dbus.WithMatchMember("PropertiesChanged"),
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to watch device properties: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)
	go watchSignals(signals, h)

	// Closing the connection closes signals and ends the watcher.
	return func() {
		if err := conn.Close(); err != nil {
			log.Printf("Failed to close system bus: %v", err)
		}
	}, nil
}
