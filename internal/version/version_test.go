package version

import "testing"

func TestGet(t *testing.T) {
	v := Get()
	if v == "" {
		t.Fatal("Get() returned empty version")
	}
	if v != "0.1.0" {
		t.Errorf("Get() = %q, want %q", v, "0.1.0")
	}
}
