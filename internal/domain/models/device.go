package models

import "fmt"

// NetworkDevice is the capability set shared by managed network elements
type NetworkDevice interface {
	Connect() string
	Disconnect() string
	Status() string
}

// DeviceType identifies a NetworkDevice variant
type DeviceType string

const (
	DeviceTypeRouter DeviceType = "router"
	DeviceTypeSwitch DeviceType = "switch"
)

// Router status values
const (
	RouterStatusActive   = "Active"
	RouterStatusInactive = "Inactive"
)

var (
	_ NetworkDevice = (*Router)(nil)
	_ NetworkDevice = (*Switch)(nil)
)

// Router tracks a single connected flag
type Router struct {
	ipAddress string
	connected bool
}

// NewRouter creates a disconnected router
func NewRouter(ipAddress string) *Router {
	return &Router{ipAddress: ipAddress}
}

func (r *Router) IPAddress() string { return r.ipAddress }
func (r *Router) Connected() bool   { return r.connected }

func (r *Router) Connect() string {
	r.connected = true
	return fmt.Sprintf("Router %s connected", r.ipAddress)
}

func (r *Router) Disconnect() string {
	r.connected = false
	return fmt.Sprintf("Router %s disconnected", r.ipAddress)
}

func (r *Router) Status() string {
	if r.connected {
		return RouterStatusActive
	}
	return RouterStatusInactive
}

// Port describes one switch port
type Port struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
}

// Switch holds a port mapping fixed at construction.
// Connect and Disconnect report but do not change state.
type Switch struct {
	switchID string
	ports    map[string]Port
}

// NewSwitch creates a switch with the given ports. Later ports with a
// duplicate ID replace earlier ones.
func NewSwitch(switchID string, ports ...Port) *Switch {
	m := make(map[string]Port, len(ports))
	for _, p := range ports {
		m[p.ID] = p
	}
	return &Switch{switchID: switchID, ports: m}
}

func (s *Switch) SwitchID() string { return s.switchID }
func (s *Switch) PortCount() int   { return len(s.ports) }

func (s *Switch) Connect() string {
	return fmt.Sprintf("Switch %s initialized", s.switchID)
}

func (s *Switch) Disconnect() string {
	return fmt.Sprintf("Switch %s powered down", s.switchID)
}

func (s *Switch) Status() string {
	return fmt.Sprintf("Switch %s with %d active ports", s.switchID, len(s.ports))
}
