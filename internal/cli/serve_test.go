package cli

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeListener_GracefulShutdown(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.ShutdownGrace = time.Second
	app, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeListener(ctx, app, ln) }()

	base := "http://" + ln.Addr().String()
	resp, err := http.Post(base+"/api/chat", "application/json", strings.NewReader(`{"message":"Bonjour"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `teller_turns_total{intent="salutation"} 1`)
	assert.Contains(t, string(body), "go_goroutines")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_BadAddress(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Addr = "256.0.0.1:bad"
	app, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.Error(t, Serve(context.Background(), app))
}
