package scan

import (
	"errors"
	"testing"

	"github.com/everstacklabs/bedrockscan/internal/catalog"
	"github.com/everstacklabs/bedrockscan/internal/report"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitSuccess},
		{"total discovery failure", &catalog.DiscoveryError{}, ExitDiscovery},
		{"profile listing failure", errors.New("listing inference profiles: denied"), ExitDiscovery},
		{"unwritable output", &report.WriteError{Path: "/nope"}, ExitWrite},
		{"wrapped write error", errors.Join(errors.New("run"), &report.WriteError{Path: "/nope"}), ExitWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
