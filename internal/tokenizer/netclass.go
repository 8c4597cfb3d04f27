package tokenizer

import (
	"context"
	"errors"
	"syscall"
)

// fetchClass labels a remote-accessor construction failure.
type fetchClass int

const (
	// fetchFatal covers every failure that must surface to the caller.
	fetchFatal fetchClass = iota
	// fetchNoConnectivity is the transport-level "not connected to a
	// network" signal, the only class that permits the local fallback.
	fetchNoConnectivity
)

// classifyFetchErr decides whether a remote fetch failure may fall back to
// the local cache. Only the unreachable-network errnos qualify; timeouts,
// DNS failures, HTTP status errors, and canceled contexts are all fatal.
// net/http wraps syscall errnos in url.Error, net.OpError, and
// os.SyscallError layers, which errors.Is unwraps.
func classifyFetchErr(err error) fetchClass {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fetchFatal
	}
	if errors.Is(err, syscall.ENETDOWN) || errors.Is(err, syscall.ENETUNREACH) {
		return fetchNoConnectivity
	}
	return fetchFatal
}
