package rod

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultRecycleAfter is the number of rendered pages after which the
// browser process is replaced.
const DefaultRecycleAfter = 75

// browserPool owns one headless Chrome process and replaces it after a
// fixed number of rendered pages. Chrome memory grows steadily across a
// long crawl and does not shrink when pages are closed.
type browserPool struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher

	rendered     atomic.Int64
	recycleAfter int64
	closed       atomic.Bool
}

func newBrowserPool(recycleAfter int64) (*browserPool, error) {
	if recycleAfter <= 0 {
		recycleAfter = DefaultRecycleAfter
	}
	p := &browserPool{recycleAfter: recycleAfter}
	if err := p.launch(); err != nil {
		return nil, err
	}
	return p, nil
}

// acquire returns the live browser, swapping in a fresh one first when the
// page budget is spent. A failed relaunch keeps the old browser.
func (p *browserPool) acquire() (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.browser == nil {
		return nil, errClosed
	}
	if p.rendered.Load() >= p.recycleAfter {
		p.recycle()
	}
	return p.browser, nil
}

// done records one rendered page against the budget.
func (p *browserPool) done() {
	p.rendered.Add(1)
}

func (p *browserPool) close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdown()
}

func (p *browserPool) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	p.browser = b
	p.launcher = l
	return nil
}

// shutdown must be called with mu held.
func (p *browserPool) shutdown() error {
	var err error
	if p.browser != nil {
		err = p.browser.Close()
		p.browser = nil
	}
	if p.launcher != nil {
		p.launcher.Kill()
		p.launcher = nil
	}
	return err
}

// recycle must be called with mu held.
func (p *browserPool) recycle() {
	oldBrowser, oldLauncher := p.browser, p.launcher
	if err := p.launch(); err != nil {
		p.browser, p.launcher = oldBrowser, oldLauncher
		return
	}
	_ = oldBrowser.Close()
	oldLauncher.Kill()
	p.rendered.Store(0)
}

// pid returns the launcher process ID, or 0 once closed.
func (p *browserPool) pid() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.launcher == nil {
		return 0
	}
	return p.launcher.PID()
}
