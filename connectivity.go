package fetchgate

import "sync/atomic"

// Connectivity reports whether the network is usable. The client asks before
// every operation and never caches the answer.
type Connectivity interface {
	Reachable() bool
}

// ConnectivityFunc adapts a func to Connectivity.
type ConnectivityFunc func() bool

func (f ConnectivityFunc) Reachable() bool { return f() }

// AlwaysReachable is the default oracle.
var AlwaysReachable Connectivity = ConnectivityFunc(func() bool { return true })

// NetworkAccess mirrors the access levels platform network APIs report.
type NetworkAccess int

const (
	NetworkAccessUnknown NetworkAccess = iota
	NetworkAccessNone
	NetworkAccessLocal
	NetworkAccessConstrainedInternet
	NetworkAccessInternet
)

// Reachable is true for Internet and ConstrainedInternet.
func (a NetworkAccess) Reachable() bool {
	return a == NetworkAccessInternet || a == NetworkAccessConstrainedInternet
}

func (a NetworkAccess) String() string {
	switch a {
	case NetworkAccessNone:
		return "none"
	case NetworkAccessLocal:
		return "local"
	case NetworkAccessConstrainedInternet:
		return "constrained-internet"
	case NetworkAccessInternet:
		return "internet"
	default:
		return "unknown"
	}
}

// NetworkAccessFunc adapts a platform probe returning a NetworkAccess level.
type NetworkAccessFunc func() NetworkAccess

func (f NetworkAccessFunc) Reachable() bool { return f().Reachable() }

// ConnectivitySwitch is a Connectivity flipped by the application, for
// example from an OS network-change callback.
type ConnectivitySwitch struct {
	down atomic.Bool
}

// NewConnectivitySwitch returns a switch in the given state.
func NewConnectivitySwitch(up bool) *ConnectivitySwitch {
	s := &ConnectivitySwitch{}
	s.Set(up)
	return s
}

func (s *ConnectivitySwitch) Set(up bool)     { s.down.Store(!up) }
func (s *ConnectivitySwitch) Reachable() bool { return !s.down.Load() }
