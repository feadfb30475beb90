package shared

import (
	"strings"
	"testing"
)

func TestOpenBrowserUnsupportedPlatform(t *testing.T) {
	orig := goos
	goos = func() string { return "plan9" }
	defer func() { goos = orig }()

	err := OpenBrowser("https://bsky.app/profile/did:plc:abc/lists/3kxyz")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported platform") {
		t.Errorf("err = %v, want unsupported platform", err)
	}
}
