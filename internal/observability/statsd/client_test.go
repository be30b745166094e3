package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Line(t *testing.T) {
	t.Parallel()

	c := &Client{prefix: "binwatch", globalTags: map[string]string{"env": "dev", "app": "cli"}}

	tests := []struct {
		name  string
		input string
		tags  map[string]string
		want  string
	}{
		{
			name:  "prefix and sorted tags",
			input: "session.transition",
			tags:  map[string]string{"to": "authenticated", "env": "stage"},
			want:  "binwatch.session.transition:1|c|#app:cli,env:stage,to:authenticated",
		},
		{
			name:  "name normalisation",
			input: " backend/request ",
			want:  "binwatch.backend_request:1|c|#app:cli,env:dev",
		},
		{
			name:  "empty name dropped",
			input: "  ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.line(tt.input, "1|c", tt.tags))
		})
	}
}

func TestClient_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Enabled: false, Address: "127.0.0.1:8125"})
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	c.Count("x", 1, nil)
	c.Timing("y", time.Second, nil)
	require.NoError(t, c.Close())

	var nilClient *Client
	nilClient.Count("x", 1, nil)
	assert.False(t, nilClient.Enabled())
}

func TestClient_WritesOverUDP(t *testing.T) {
	t.Parallel()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	c, err := NewClient(Config{Enabled: true, Address: pc.LocalAddr().String(), Prefix: ".binwatch."})
	require.NoError(t, err)
	defer c.Close()
	require.True(t, c.Enabled())

	c.Timing("backend.request", 1500*time.Microsecond, map[string]string{"op": "list_bins"})

	buf := make([]byte, 512)
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, "binwatch.backend.request:1.5|ms|#op:list_bins", string(buf[:n]))
}
