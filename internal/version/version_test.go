package version

import "testing"

func TestString(t *testing.T) {
	saved := Version
	t.Cleanup(func() { Version = saved })

	Version = "v1.2.3"
	want := "v1.2.3 (commit=" + Commit + ", built=" + BuildDate + ", go=" + GoVersion + ")"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
