// Package deviceicon resolves the icons of audio devices and caches them
// with a sliding expiration.
package deviceicon

// DataFlow describes the directionality of an audio endpoint.
type DataFlow int

// Data flows, in the order the endpoint enumeration API defines them.
const (
	Render DataFlow = iota
	Capture
	// All is only valid as an enumeration filter, never for a single device.
	All
)

func (f DataFlow) String() string {
	switch f {
	case Render:
		return "render"
	case Capture:
		return "capture"
	case All:
		return "all"
	default:
		return "unknown"
	}
}

// ParseDataFlow returns the data flow with the given name.
func ParseDataFlow(name string) (DataFlow, bool) {
	switch name {
	case "render":
		return Render, true
	case "capture":
		return Capture, true
	case "all":
		return All, true
	default:
		return 0, false
	}
}

// Device is an audio endpoint as supplied by device enumeration.
type Device interface {
	// IconPath returns the icon-path specifier of the device, either a path
	// to an .ico file or a "container,index" reference.
	IconPath() string
	// DataFlow returns whether the device captures or renders audio.
	DataFlow() DataFlow
}

// Endpoint is a static Device.
type Endpoint struct {
	ID   string
	Icon string
	Flow DataFlow
}

// IconPath implements Device.
func (e Endpoint) IconPath() string {
	return e.Icon
}

// DataFlow implements Device.
func (e Endpoint) DataFlow() DataFlow {
	return e.Flow
}
