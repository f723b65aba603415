// Package notify carries the out-of-band refresh signal between vizzly
// tooling and a running monitor.
//
// Filesystem watching covers the common case; this channel exists for
// producers that change registry state and want the monitor to re-read
// immediately instead of waiting for an event to percolate. Two transports
// feed the same callback: a datagram socket at ~/.vizzly/monitor.sock and
// SIGUSR1. Both are hints with no payload contract; any message means
// "re-read now".
//
// Windows builds compile to no-ops. The socket is a convenience channel,
// not required for correctness anywhere.
package notify

// DefaultTrigger labels a refresh request whose sender did not say why.
const DefaultTrigger = "signal"
