package radio

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gobatt/pkg/link"
)

func propertiesSignal(iface string, changed map[string]dbus.Variant) *dbus.Signal {
	return &dbus.Signal{
		Path: "/org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF",
		Name: propertiesChanged,
		Body: []interface{}{iface, changed, []string{}},
	}
}

func TestConnectedChange(t *testing.T) {
	tests := []struct {
		name          string
		sig           *dbus.Signal
		wantConnected bool
		wantOK        bool
	}{
		{"connected", propertiesSignal(bluezDevice, map[string]dbus.Variant{"Connected": dbus.MakeVariant(true)}), true, true},
		{"disconnected", propertiesSignal(bluezDevice, map[string]dbus.Variant{"Connected": dbus.MakeVariant(false)}), false, true},
		{"other property", propertiesSignal(bluezDevice, map[string]dbus.Variant{"RSSI": dbus.MakeVariant(int16(-60))}), false, false},
		{"other interface", propertiesSignal("org.bluez.Adapter1", map[string]dbus.Variant{"Connected": dbus.MakeVariant(true)}), false, false},
		{"wrong type", propertiesSignal(bluezDevice, map[string]dbus.Variant{"Connected": dbus.MakeVariant("yes")}), false, false},
		{"other member", &dbus.Signal{Name: "org.bluez.Device1.Disconnected"}, false, false},
		{"short body", &dbus.Signal{Name: propertiesChanged, Body: []interface{}{bluezDevice}}, false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connected, ok := connectedChange(tt.sig)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantConnected, connected)
		})
	}
}

// Bus signals drive the connection state and re-arm advertising on disconnect.
func TestWatchSignals_DrivesConnection(t *testing.T) {
	adv := &fakeAdvertiser{}
	p := &Peripheral{adv: adv, char: &fakeCharacteristic{}}
	conn := link.New(p)

	signals := make(chan *dbus.Signal)
	done := make(chan struct{})
	go func() {
		defer close(done)
		watchSignals(signals, conn)
	}()

	signals <- propertiesSignal(bluezDevice, map[string]dbus.Variant{"Connected": dbus.MakeVariant(true)})
	signals <- propertiesSignal(bluezDevice, map[string]dbus.Variant{"ServicesResolved": dbus.MakeVariant(true)})
	require.Eventually(t, conn.IsConnected, time.Second, time.Millisecond)

	signals <- propertiesSignal(bluezDevice, map[string]dbus.Variant{"Connected": dbus.MakeVariant(false)})
	close(signals)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not return after the channel closed")
	}
	assert.False(t, conn.IsConnected())
	assert.Equal(t, 1, adv.starts)
	assert.Equal(t, 1, adv.stops)
}
