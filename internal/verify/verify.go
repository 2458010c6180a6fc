// Package verify checks a served site in a headless browser: HTTP
// reachability, React mount, the vite error overlay, blank-page detection
// and real JS console errors. It returns failure strings the fault locator
// and repair prompts consume; an empty slice means the page is healthy.
package verify

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const (
	// DefaultReadyTimeout bounds the wait for vite to answer HTTP 200.
	DefaultReadyTimeout = 30 * time.Second
	// DefaultNavigateTimeout bounds the page load.
	DefaultNavigateTimeout = 30 * time.Second
	// DefaultMountTimeout bounds the wait per mount selector.
	DefaultMountTimeout = 8 * time.Second

	readyPollInterval = 1500 * time.Millisecond
)

// mountSelectors are tried in order; some generated apps skip #root.
var mountSelectors = []string{"#root > *", "#app > *", "canvas", "svg", "main"}

// consoleNoise marks messages that never indicate a broken app: HMR
// chatter, React dev warnings, network noise.
var consoleNoise = []string{
	"favicon", "Warning:", "DevTools", "Download the React",
	"ReactDOM.render", "StrictMode", "[HMR]", "[vite]", "vite",
	"hot update", "connecting", "react-refresh",
	"net::ERR_", "Failed to load resource",
	"Cross-Origin", "Content-Security-Policy",
}

// realSignals mark the JS exceptions that actually break a page. A console
// message is only reported when it matches one of these and none of the
// noise markers.
var realSignals = []string{
	"is not defined", "is not a function",
	"Cannot read prop", "Cannot read properties",
	"SyntaxError", "ReferenceError", "TypeError",
	"Failed to resolve import", "does not provide an export",
}

// Logf receives verification progress lines. Nil disables logging.
type Logf func(format string, args ...interface{})

// consoleLog collects console and exception messages from the browser.
// ListenTarget dispatches events on chromedp's own goroutine, concurrent
// with the evaluate/screenshot actions in Run, so every access locks.
type consoleLog struct {
	mu   sync.Mutex
	msgs []string
}

func (c *consoleLog) add(msg string) {
	c.mu.Lock()
	c.msgs = append(c.msgs, msg)
	c.mu.Unlock()
}

func (c *consoleLog) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

// Verifier drives one browser check against a served project.
type Verifier struct {
	URL        string
	ProjectDir string // screenshot destination; "" skips the screenshot
	Logf       Logf

	ReadyTimeout    time.Duration
	NavigateTimeout time.Duration
	MountTimeout    time.Duration
}

// NewVerifier returns a Verifier with default timeouts.
func NewVerifier(url string) *Verifier {
	return &Verifier{
		URL:             url,
		ReadyTimeout:    DefaultReadyTimeout,
		NavigateTimeout: DefaultNavigateTimeout,
		MountTimeout:    DefaultMountTimeout,
	}
}

func (v *Verifier) logf(format string, args ...interface{}) {
	if v.Logf != nil {
		v.Logf(format, args...)
	}
}

func (v *Verifier) readyTimeout() time.Duration {
	if v.ReadyTimeout > 0 {
		return v.ReadyTimeout
	}
	return DefaultReadyTimeout
}

func (v *Verifier) navigateTimeout() time.Duration {
	if v.NavigateTimeout > 0 {
		return v.NavigateTimeout
	}
	return DefaultNavigateTimeout
}

func (v *Verifier) mountTimeout() time.Duration {
	if v.MountTimeout > 0 {
		return v.MountTimeout
	}
	return DefaultMountTimeout
}

// Run executes the full verification pass and returns failure strings.
func (v *Verifier) Run(ctx context.Context) []string {
	var failures []string

	v.logf("waiting for dev server at %s", v.URL)
	if err := v.waitForServer(ctx); err != nil {
		return append(failures, fmt.Sprintf("HTTP check failed: %v", err))
	}
	v.logf("HTTP 200, dev server is serving")

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	console := &consoleLog{}
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			if e.Type == runtime.APITypeError {
				console.add(consoleText(e.Args))
			}
		case *runtime.EventExceptionThrown:
			console.add("PageError: " + exceptionText(e.ExceptionDetails))
		}
	})

	// Navigate with "load" semantics; networkidle never fires because the
	// vite HMR websocket stays open.
	navCtx, cancelNav := context.WithTimeout(browserCtx, v.navigateTimeout())
	defer cancelNav()
	resp, err := chromedp.RunResponse(navCtx, chromedp.Navigate(v.URL))
	if err != nil {
		return append(failures, "Page load timeout — Vite may still be compiling")
	}
	if resp != nil && resp.Status >= 400 {
		return append(failures, fmt.Sprintf("Page returned HTTP %d", resp.Status))
	}
	v.logf("page loaded")

	mounted := v.waitForMount(browserCtx)
	if !mounted {
		failures = append(failures, "App never rendered — likely a compile/runtime error")
	}

	if overlay := v.errorOverlay(browserCtx); overlay != "" {
		failures = append(failures, "Vite compile error: "+truncate(overlay, 500))
	}

	if mounted && v.pageBlank(browserCtx) {
		failures = append(failures, "Page appears completely blank — nothing rendered")
	}

	failures = append(failures, filterConsoleErrors(console.snapshot())...)

	v.screenshot(browserCtx)

	if len(failures) > 0 {
		v.logf("%d issue(s) found", len(failures))
	} else {
		v.logf("all browser checks passed")
	}
	return failures
}

// waitForServer polls the URL until it answers 200.
func (v *Verifier) waitForServer(ctx context.Context) error {
	deadline := time.Now().Add(v.readyTimeout())
	client := &http.Client{Timeout: 5 * time.Second}
	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.URL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readyPollInterval):
		}
	}
	return fmt.Errorf("timeout after %s", v.readyTimeout())
}

// waitForMount tries each mount selector in turn, then falls back to
// checking that body has any children at all.
func (v *Verifier) waitForMount(ctx context.Context) bool {
	for _, sel := range mountSelectors {
		selCtx, cancel := context.WithTimeout(ctx, v.mountTimeout())
		err := chromedp.Run(selCtx, chromedp.WaitVisible(sel, chromedp.ByQuery))
		cancel()
		if err == nil {
			v.logf("app rendered (selector: %s)", sel)
			return true
		}
	}
	var children int
	if err := chromedp.Run(ctx, chromedp.Evaluate("document.body.children.length", &children)); err == nil && children > 0 {
		v.logf("body has children, assuming rendered")
		return true
	}
	return false
}

// overlayJS reads the vite error overlay through its shadow root. A raw
// HTML scan false-positives on source maps and inline JS strings.
const overlayJS = `(() => {
  const ov = document.querySelector('vite-error-overlay');
  if (ov && ov.shadowRoot) {
    const el = ov.shadowRoot.querySelector('.message-body,.message,pre,.err-message');
    return el ? el.textContent.trim().slice(0,600)
              : ov.shadowRoot.textContent.trim().slice(0,600);
  }
  return '';
})()`

func (v *Verifier) errorOverlay(ctx context.Context) string {
	var text string
	if err := chromedp.Run(ctx, chromedp.Evaluate(overlayJS, &text)); err != nil {
		return ""
	}
	if len(text) <= 15 {
		return ""
	}
	return text
}

// visibleJS reports whether anything on the page has a real bounding box.
const visibleJS = `(() => {
  const sels = ['#root *', '#app *', 'body > div *', 'canvas', 'svg'];
  for (const s of sels) {
    for (const el of document.querySelectorAll(s)) {
      const r = el.getBoundingClientRect();
      if (r.width > 5 && r.height > 5) return true;
    }
  }
  return false;
})()`

// pageBlank fails only when nothing has a visible bounding box AND the
// body text is essentially empty. Canvas- or icon-only apps render rich
// content with almost no innerText, so either signal alone is not enough.
func (v *Verifier) pageBlank(ctx context.Context) bool {
	var hasVisible bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(visibleJS, &hasVisible)); err != nil {
		return false
	}
	if hasVisible {
		return false
	}
	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return false
	}
	return len(bodyText(html)) < 10
}

// bodyText extracts the rendered text of the body element.
func bodyText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("body").Text())
}

// filterConsoleErrors keeps only messages that match a real breakage
// signal and none of the noise markers, capped at five.
func filterConsoleErrors(errors []string) []string {
	var out []string
	for _, e := range errors {
		if isNoise(e) || !hasRealSignal(e) {
			continue
		}
		out = append(out, "Console error: "+truncate(e, 160))
		if len(out) == 5 {
			break
		}
	}
	return out
}

func isNoise(msg string) bool {
	lower := strings.ToLower(msg)
	for _, n := range consoleNoise {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func hasRealSignal(msg string) bool {
	for _, s := range realSignals {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (v *Verifier) screenshot(ctx context.Context) {
	if v.ProjectDir == "" {
		return
	}
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		v.logf("screenshot failed: %v", err)
		return
	}
	path := filepath.Join(v.ProjectDir, "test_screenshot.png")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		v.logf("screenshot write failed: %v", err)
		return
	}
	v.logf("screenshot saved to test_screenshot.png")
}

func consoleText(args []*runtime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		if a.Value != nil {
			parts = append(parts, strings.Trim(string(a.Value), `"`))
		} else if a.Description != "" {
			parts = append(parts, a.Description)
		}
	}
	return strings.Join(parts, " ")
}

func exceptionText(d *runtime.ExceptionDetails) string {
	if d == nil {
		return "unknown exception"
	}
	if d.Exception != nil && d.Exception.Description != "" {
		return d.Exception.Description
	}
	return d.Text
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
