// Package raster captures rendered invoice markup as a bitmap using a
// headless Chrome instance. It is the one external collaborator the export
// path depends on for rasterization; the browser is started once and
// reused, with a fresh tab per capture.
package raster

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Image is a captured bitmap. Width and Height are pixel dimensions of the
// PNG, i.e. the document extent multiplied by the capture scale.
type Image struct {
	PNG    []byte
	Width  int64
	Height int64
}

type config struct {
	chromePath string
	noSandbox  bool
	timeout    time.Duration
	settle     time.Duration
	scale      float64
}

func defaultConfig() config {
	return config{
		timeout: 30 * time.Second,
		settle:  100 * time.Millisecond,
		scale:   2,
	}
}

// Option configures a [Capturer].
type Option func(*config)

// WithChromePath sets the Chrome/Chromium executable path. By default the
// standard locations are searched.
func WithChromePath(path string) Option {
	return func(c *config) { c.chromePath = path }
}

// WithNoSandbox disables the Chrome sandbox, required when running as root
// (Docker containers).
func WithNoSandbox() Option {
	return func(c *config) { c.noSandbox = true }
}

// WithTimeout bounds a single capture. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithSettleDelay sets the pause between document readiness and capture.
// Readiness is the primary signal; the delay only covers late layout work
// (webfont swap) that fires no event. Defaults to 100ms.
func WithSettleDelay(d time.Duration) Option {
	return func(c *config) { c.settle = d }
}

// Capturer owns a headless browser reused across captures. Safe for
// concurrent use; call [Capturer.Close] to release the browser.
type Capturer struct {
	cfg           config
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// New starts the headless browser eagerly so startup errors surface here
// rather than on the first export.
func New(opts ...Option) (*Capturer, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("no-first-run", true),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("raster: starting browser: %w", err)
	}

	return &Capturer{
		cfg:           cfg,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases the browser. Idempotent.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.browserCancel()
	c.allocCancel()
	return nil
}

var errClosed = fmt.Errorf("raster: capturer is closed")

type pageDims struct {
	Width  int64 `json:"width"`
	Height int64 `json:"height"`
}

const extentJS = `({width: document.documentElement.scrollWidth, height: document.documentElement.scrollHeight})`

// Capture renders the HTML document and screenshots its full scrollable
// extent on an opaque white background at the configured pixel-density
// scale.
func (c *Capturer) Capture(ctx context.Context, html string) (*Image, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errClosed
	}
	c.mu.Unlock()

	f, err := os.CreateTemp("", "billforge-*.html")
	if err != nil {
		return nil, fmt.Errorf("raster: creating temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)
	if _, err := f.WriteString(html); err != nil {
		f.Close()
		return nil, fmt.Errorf("raster: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("raster: closing temp file: %w", err)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("raster: resolving path: %w", err)
	}

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}
	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx)
	defer tabCancel()
	// Tie the tab to the caller's deadline.
	go func() {
		<-ctx.Done()
		tabCancel()
	}()

	var dims pageDims
	var buf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("file://"+abs),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(c.cfg.settle),
		chromedp.Evaluate(extentJS, &dims),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := emulation.SetDeviceMetricsOverride(dims.Width, dims.Height, c.cfg.scale, false).Do(ctx); err != nil {
				return err
			}
			white := &cdp.RGBA{R: 255, G: 255, B: 255, A: 1}
			if err := emulation.SetDefaultBackgroundColorOverride().WithColor(white).Do(ctx); err != nil {
				return err
			}
			shot, err := page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithCaptureBeyondViewport(true).
				Do(ctx)
			if err != nil {
				return err
			}
			buf = shot
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("raster: capture failed: %w", err)
	}

	scale := int64(c.cfg.scale)
	return &Image{PNG: buf, Width: dims.Width * scale, Height: dims.Height * scale}, nil
}
