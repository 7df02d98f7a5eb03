package radio

import (
	"github.com/godbus/dbus/v5"

	"github.com/itohio/gobatt/pkg/link"
)

const (
	bluezDevice       = "org.bluez.Device1"
	propertiesIface   = "org.freedesktop.DBus.Properties"
	propertiesChanged = propertiesIface + ".PropertiesChanged"
)

// connectedChange reports the new Device1.Connected value carried by sig.
// ok is false for any other signal or property.
func connectedChange(sig *dbus.Signal) (connected, ok bool) {
	if sig == nil || sig.Name != propertiesChanged || len(sig.Body) < 2 {
		return false, false
	}
	if iface, _ := sig.Body[0].(string); iface != bluezDevice {
		return false, false
	}
	changed, _ := sig.Body[1].(map[string]dbus.Variant)
	v, found := changed["Connected"]
	if !found {
		return false, false
	}
	connected, ok = v.Value().(bool)
	return connected, ok
}

// watchSignals forwards connection changes to h until signals is closed.
func watchSignals(signals <-chan *dbus.Signal, h link.Handler) {
	for sig := range signals {
		if connected, ok := connectedChange(sig); ok {
			dispatch(h, connected)
		}
	}
}
