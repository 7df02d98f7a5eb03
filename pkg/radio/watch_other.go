//go:build !linux || baremetal

package radio

import "github.com/itohio/gobatt/pkg/link"

// watchConnections is a no-op where the adapter's connect handler reports
// connections itself.
func watchConnections(link.Handler) (func(), error) {
	return func() {}, nil
}
