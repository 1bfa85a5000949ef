package environment

import (
	"testing"
)

// TestFd tests descriptor extraction from environment variables.
func TestFd(t *testing.T) {
	// Define test cases.
	tests := []struct {
		value    string
		set      bool
		expected int
	}{
		{"", false, -1},
		{"3", true, 3},
		{"0", true, 0},
		{"255", true, 255},
		{"256", true, -1},
		{"-2", true, -1},
		{"pipe", true, -1},
	}

	// Process test cases.
	for _, test := range tests {
		if test.set {
			t.Setenv("REDO_TEST_FD", test.value)
		}
		if fd := Fd("REDO_TEST_FD"); fd != test.expected {
			t.Error("descriptor value does not match expected:", fd, "!=", test.expected)
		}
	}
}

// TestSetFd tests that stored descriptors round-trip.
func TestSetFd(t *testing.T) {
	t.Setenv("REDO_TEST_FD", "")
	if err := SetFd("REDO_TEST_FD", 7); err != nil {
		t.Fatal("unable to store descriptor:", err)
	}
	if fd := Fd("REDO_TEST_FD"); fd != 7 {
		t.Error("stored descriptor does not match expected:", fd, "!= 7")
	}
}

// TestMapRoundTrip tests conversion between environment representations.
func TestMapRoundTrip(t *testing.T) {
	// Convert a block with a malformed entry.
	environment := ToMap([]string{"KEY=value", "OTHER=a=b", "IGNORED"})
	if len(environment) != 2 {
		t.Fatal("converted environment has unexpected size:", len(environment))
	}
	if environment["OTHER"] != "a=b" {
		t.Error("value split at wrong separator:", environment["OTHER"])
	}

	// Convert back and ensure both entries survive.
	if specifications := FromMap(environment); len(specifications) != 2 {
		t.Error("converted specifications have unexpected size:", len(specifications))
	}
}
