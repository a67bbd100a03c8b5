package config

import (
	"os"
	"sync"
)

// containerMarkers are files the Docker and Podman runtimes create at the
// root of every container.
var containerMarkers = []string{"/.dockerenv", "/run/.containerenv"}

// loopbackHosts name the machine itself. From inside a container they point
// at the container, not at the host that runs the DSP stack.
var loopbackHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"0.0.0.0":   true,
	"::1":       true,
}

const hostGateway = "host.docker.internal"

var (
	containerOnce sync.Once
	inContainer   bool
)

// IsRunningInDocker reports whether the process runs in a container. The
// answer is computed once.
func IsRunningInDocker() bool {
	containerOnce.Do(func() {
		inContainer = hasMarker(containerMarkers)
	})
	return inContainer
}

func hasMarker(paths []string) bool {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// ResolveHostForDocker maps a configured Knora host to one reachable from
// this process.
func ResolveHostForDocker(host string) string {
	return resolveHost(host, IsRunningInDocker())
}

func resolveHost(host string, containerized bool) string {
	if containerized && loopbackHosts[host] {
		return hostGateway
	}
	return host
}
