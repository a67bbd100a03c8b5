package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveHost(t *testing.T) {
	tests := []struct {
		host          string
		containerized bool
		want          string
	}{
		{"localhost", true, "host.docker.internal"},
		{"127.0.0.1", true, "host.docker.internal"},
		{"0.0.0.0", true, "host.docker.internal"},
		{"::1", true, "host.docker.internal"},
		{"api.dasch.swiss", true, "api.dasch.swiss"},
		{"192.168.1.100", true, "192.168.1.100"},
		{"localhost", false, "localhost"},
		{"0.0.0.0", false, "0.0.0.0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveHost(tt.host, tt.containerized), "host %q containerized=%v", tt.host, tt.containerized)
	}
}

func TestResolveHostForDocker_FollowsDetection(t *testing.T) {
	want := "localhost"
	if IsRunningInDocker() {
		want = "host.docker.internal"
	}
	assert.Equal(t, want, ResolveHostForDocker("localhost"))
}

func TestHasMarker(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, ".containerenv")

	assert.False(t, hasMarker([]string{marker}))
	assert.NoError(t, os.WriteFile(marker, nil, 0o600))
	assert.True(t, hasMarker([]string{filepath.Join(dir, "missing"), marker}))
}
