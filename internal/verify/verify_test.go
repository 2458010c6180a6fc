package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterConsoleErrors_KeepsRealSignals(t *testing.T) {
	input := []string{
		"ReferenceError: FiOval is not defined",
		"Uncaught TypeError: Cannot read properties of undefined",
	}
	out := filterConsoleErrors(input)
	require.Len(t, out, 2)
	assert.Equal(t, "Console error: ReferenceError: FiOval is not defined", out[0])
}

func TestFilterConsoleErrors_DropsNoise(t *testing.T) {
	input := []string{
		"[vite] connecting...",
		"Warning: Each child in a list should have a unique key",
		"Download the React DevTools for a better development experience",
		"Failed to load resource: net::ERR_CONNECTION_REFUSED",
		"GET /favicon.ico 404",
	}
	assert.Empty(t, filterConsoleErrors(input))
}

func TestFilterConsoleErrors_RequiresRealSignal(t *testing.T) {
	// Not noise, but not a breakage signal either.
	assert.Empty(t, filterConsoleErrors([]string{"something odd happened"}))
}

func TestFilterConsoleErrors_CapsAtFiveAndTruncates(t *testing.T) {
	var input []string
	for i := 0; i < 8; i++ {
		input = append(input, "ReferenceError: "+strings.Repeat("x", 300))
	}
	out := filterConsoleErrors(input)
	require.Len(t, out, 5)
	assert.Len(t, out[0], len("Console error: ")+160)
}

func TestConsoleLog_ConcurrentAddAndSnapshot(t *testing.T) {
	// Browser events arrive on chromedp's dispatch goroutine while Run
	// reads the collected messages; hammer both sides under -race.
	log := &consoleLog{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				log.add("ReferenceError: FiOval is not defined")
				log.snapshot()
			}
		}()
	}
	wg.Wait()

	msgs := log.snapshot()
	require.Len(t, msgs, 400)
	assert.Len(t, filterConsoleErrors(msgs), 5)
}

func TestConsoleLog_SnapshotIsACopy(t *testing.T) {
	log := &consoleLog{}
	log.add("first")
	snap := log.snapshot()
	log.add("second")
	assert.Len(t, snap, 1)
	assert.Len(t, log.snapshot(), 2)
}

func TestBodyText(t *testing.T) {
	html := `<html><head><title>t</title></head><body><div id="root"><h1>Hello</h1> world</div></body></html>`
	assert.Equal(t, "Hello world", bodyText(html))
	assert.Empty(t, bodyText("<html><body>  </body></html>"))
}

func TestWaitForServer_Succeeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := NewVerifier(srv.URL)
	v.ReadyTimeout = 5 * time.Second
	assert.NoError(t, v.waitForServer(context.Background()))
}

func TestWaitForServer_TimesOut(t *testing.T) {
	// Nothing listens on this port.
	v := NewVerifier("http://127.0.0.1:1")
	v.ReadyTimeout = 100 * time.Millisecond
	err := v.waitForServer(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestRun_UnreachableServerReportsHTTPFailure(t *testing.T) {
	v := NewVerifier("http://127.0.0.1:1")
	v.ReadyTimeout = 100 * time.Millisecond

	failures := v.Run(context.Background())
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "HTTP check failed")
}

func TestVerifierDefaults(t *testing.T) {
	v := &Verifier{URL: "http://localhost:5173"}
	assert.Equal(t, DefaultReadyTimeout, v.readyTimeout())
	assert.Equal(t, DefaultNavigateTimeout, v.navigateTimeout())
	assert.Equal(t, DefaultMountTimeout, v.mountTimeout())
}
