package httperrors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Cause
	}{
		{"nil", nil, CauseUnknown},
		{"deadline", fmt.Errorf("dial: %w", context.DeadlineExceeded), CauseTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "db.invalid"}, CauseDNS},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, CauseRefused},
		{"refused text", stderrors.New("dial tcp 127.0.0.1:8000: connect: connection refused"), CauseRefused},
		{"tls", stderrors.New("tls: failed to verify certificate: x509: unknown authority"), CauseTLS},
		{"server", stderrors.New("websocket: bad handshake status 503 Service Unavailable"), CauseServer},
		{"bad gateway", stderrors.New("unexpected status 502 Bad Gateway"), CauseServer},
		{"other", stderrors.New("boom"), CauseUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestFormatNetworkError(t *testing.T) {
	assert.Empty(t, FormatNetworkError(nil, "connecting", "db"))

	out := FormatNetworkError(stderrors.New("connect: connection refused"), "describing customers", "localhost:8000")
	assert.Contains(t, out, "Connection refused while describing customers")
	assert.Contains(t, out, "localhost:8000 is not accepting connections")
	assert.Contains(t, out, "Technical details: connect: connection refused")
}

func TestExtractHostFromURL(t *testing.T) {
	assert.Equal(t, "db.example.com:8000", ExtractHostFromURL("wss://db.example.com:8000/rpc"))
	assert.Equal(t, "the server", ExtractHostFromURL("/tmp/crm.db"))
}
