package tokenizer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"
)

func TestClassifyFetchErr(t *testing.T) {
	t.Parallel()

	wrap := func(errno syscall.Errno) error {
		return &url.Error{
			Op:  "Get",
			URL: "http://example",
			Err: &net.OpError{
				Op:  "dial",
				Err: os.NewSyscallError("connect", errno),
			},
		}
	}

	cases := []struct {
		name string
		err  error
		want fetchClass
	}{
		{"net down", wrap(syscall.ENETDOWN), fetchNoConnectivity},
		{"net unreachable", wrap(syscall.ENETUNREACH), fetchNoConnectivity},
		{"bare errno", syscall.ENETUNREACH, fetchNoConnectivity},
		{"connection refused", wrap(syscall.ECONNREFUSED), fetchFatal},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "example"}, fetchFatal},
		{"plain error", errors.New("not found"), fetchFatal},
		{"canceled", fmt.Errorf("fetch: %w", context.Canceled), fetchFatal},
		{"deadline", context.DeadlineExceeded, fetchFatal},
		{"nil-ish wrapper", fmt.Errorf("status 503"), fetchFatal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := classifyFetchErr(tc.err); got != tc.want {
				t.Fatalf("classifyFetchErr(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
