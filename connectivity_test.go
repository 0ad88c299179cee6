package fetchgate

import "testing"

func TestNetworkAccessReachable(t *testing.T) {
	testCases := []struct {
		access NetworkAccess
		want   bool
		name   string
	}{
		{NetworkAccessUnknown, false, "unknown"},
		{NetworkAccessNone, false, "none"},
		{NetworkAccessLocal, false, "local"},
		{NetworkAccessConstrainedInternet, true, "constrained-internet"},
		{NetworkAccessInternet, true, "internet"},
	}

	for _, tc := range testCases {
		if got := tc.access.Reachable(); got != tc.want {
			t.Errorf("%s.Reachable() = %v, want %v", tc.access, got, tc.want)
		}
		if tc.access.String() != tc.name {
			t.Errorf("Expected %q, got %q", tc.name, tc.access.String())
		}
	}
}

func TestNetworkAccessFunc(t *testing.T) {
	level := NetworkAccessLocal
	conn := NetworkAccessFunc(func() NetworkAccess { return level })

	if conn.Reachable() {
		t.Error("local access should not be reachable")
	}
	level = NetworkAccessInternet
	if !conn.Reachable() {
		t.Error("internet access should be reachable")
	}
}

func TestConnectivitySwitch(t *testing.T) {
	s := NewConnectivitySwitch(true)
	if !s.Reachable() {
		t.Error("Expected reachable")
	}
	s.Set(false)
	if s.Reachable() {
		t.Error("Expected unreachable")
	}

	var zero ConnectivitySwitch
	if !zero.Reachable() {
		t.Error("zero switch should be reachable")
	}
}

func TestAlwaysReachable(t *testing.T) {
	if !AlwaysReachable.Reachable() {
		t.Error("AlwaysReachable should be reachable")
	}
}
