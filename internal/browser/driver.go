// Package browser drives one Zashapon game session over CDP.
//
// A Driver attaches to an already-running AdsPower browser via Playwright's
// ConnectOverCDP, reusing the profile's existing context and page. Every
// operation converts internal Playwright faults into its documented failure
// return; nothing in this package panics across the package boundary.
package browser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/darumalabs/zashabot/internal/game"
	"github.com/darumalabs/zashabot/internal/logging"
)

// Config holds the driver's URLs and timing budgets.
type Config struct {
	BaseURL       string
	CollectionURL string

	// PageLoadTimeout bounds each navigation. Default 60s.
	PageLoadTimeout time.Duration
	// ElementWaitTimeout bounds waits for UI controls. Default 30s.
	ElementWaitTimeout time.Duration
	// AnimationMaxWait bounds the wait for the post-round "Add to collection"
	// control; win animations vary a lot in length. Default 120s.
	AnimationMaxWait time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = "https://www.zashapon.com/"
	}
	if c.CollectionURL == "" {
		c.CollectionURL = "https://zashapon.com/collection"
	}
	if c.PageLoadTimeout == 0 {
		c.PageLoadTimeout = 60 * time.Second
	}
	if c.ElementWaitTimeout == 0 {
		c.ElementWaitTimeout = 30 * time.Second
	}
	if c.AnimationMaxWait == 0 {
		c.AnimationMaxWait = 120 * time.Second
	}
	return c
}

// Driver owns one browser session for the duration of a profile run.
type Driver struct {
	cfg Config

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	closed  bool
}

// NewDriver creates a disconnected driver.
func NewDriver(cfg Config) *Driver {
	return &Driver{cfg: cfg.withDefaults()}
}

// Connect attaches to the browser behind the given CDP endpoint. The
// profile's existing browsing context and page are reused when present.
func (d *Driver) Connect(endpoint string) error {
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}
	d.pw = pw

	b, err := pw.Chromium.ConnectOverCDP(endpoint)
	if err != nil {
		d.Close()
		return fmt.Errorf("connect over CDP at %s: %w", endpoint, err)
	}
	d.browser = b

	var bctx playwright.BrowserContext
	if ctxs := b.Contexts(); len(ctxs) > 0 {
		bctx = ctxs[0]
	} else {
		bctx, err = b.NewContext()
		if err != nil {
			d.Close()
			return fmt.Errorf("create browser context: %w", err)
		}
	}

	if pages := bctx.Pages(); len(pages) > 0 {
		d.page = pages[0]
	} else {
		d.page, err = bctx.NewPage()
		if err != nil {
			d.Close()
			return fmt.Errorf("create page: %w", err)
		}
	}

	return nil
}

// Close tears down the browser connection and the local Playwright engine.
// It is idempotent and swallows teardown errors.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true

	if d.browser != nil {
		if err := d.browser.Close(); err != nil {
			logging.Debugf("browser close: %v", err)
		}
	}
	if d.pw != nil {
		if err := d.pw.Stop(); err != nil {
			logging.Debugf("playwright stop: %v", err)
		}
	}
	d.browser = nil
	d.page = nil
	d.pw = nil
}

// navigate loads a URL, waits for network idle, then sits through a fixed
// settle delay to tolerate client-side rendering races.
func (d *Driver) navigate(url string, settle time.Duration) error {
	if d.page == nil {
		return errors.New("not connected")
	}

	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(d.cfg.PageLoadTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}

	d.page.WaitForTimeout(float64(settle.Milliseconds()))
	return nil
}

// NavigateToGame loads the game page.
func (d *Driver) NavigateToGame() error {
	return d.navigate(d.cfg.BaseURL, 2*time.Second)
}

// NavigateToCollection loads the collection page. The longer settle delay
// gives the card grid time to render.
func (d *Driver) NavigateToCollection() error {
	return d.navigate(d.cfg.CollectionURL, 3*time.Second)
}

// TicketCount reads the ticket indicator. A missing indicator or an
// unparseable label both come back as 0: operationally they mean "nothing
// to play", not an error.
func (d *Driver) TicketCount() int {
	if d.page == nil {
		return 0
	}

	loc := d.page.Locator(ticketSelector).First()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(d.cfg.ElementWaitTimeout.Milliseconds())),
	})
	if err != nil {
		logging.Debugf("ticket indicator not visible: %v", err)
		return 0
	}

	text, err := loc.InnerText()
	if err != nil {
		logging.Debugf("read ticket indicator: %v", err)
		return 0
	}

	n, err := parseTicketText(text)
	if err != nil {
		logging.Debugf("parse ticket count %q: %v", text, err)
		return 0
	}
	return n
}

func parseTicketText(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative ticket count %d", n)
	}
	return n, nil
}

// IsPlayButtonVisible is a best-effort check that the Play control is
// visible and enabled. It never fails; any fault reads as "not visible".
func (d *Driver) IsPlayButtonVisible() bool {
	if d.page == nil {
		return false
	}
	loc := d.page.Locator(playButtonSelector)
	visible, err := loc.IsVisible()
	if err != nil || !visible {
		return false
	}
	enabled, err := loc.IsEnabled()
	return err == nil && enabled
}

// ClickPlay waits for the Play control and activates it.
func (d *Driver) ClickPlay() error {
	if d.page == nil {
		return errors.New("not connected")
	}
	return d.waitAndClick(playButtonSelector, d.cfg.ElementWaitTimeout)
}

// WaitForAddToCollection waits out the win animation for the
// "Add to collection" control.
func (d *Driver) WaitForAddToCollection() error {
	if d.page == nil {
		return errors.New("not connected")
	}

	err := d.page.Locator(addToCollectionSelector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(d.cfg.AnimationMaxWait.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("add-to-collection control never appeared: %w", err)
	}
	return nil
}

// ClickAddToCollection activates the control, then waits a fixed settle
// delay for the UI transition back to the game.
func (d *Driver) ClickAddToCollection() error {
	if d.page == nil {
		return errors.New("not connected")
	}
	if err := d.waitAndClick(addToCollectionSelector, d.cfg.ElementWaitTimeout); err != nil {
		return err
	}
	d.page.WaitForTimeout(2000)
	return nil
}

func (d *Driver) waitAndClick(selector string, budget time.Duration) error {
	loc := d.page.Locator(selector)
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(budget.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	if err := loc.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(budget.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

// PlayRound runs one play -> animation -> add-to-collection cycle. It fails
// fast at the first failing sub-step; a failed round tells the caller to
// stop the play loop, not to retry.
func (d *Driver) PlayRound() error {
	if err := d.ClickPlay(); err != nil {
		return err
	}
	if err := d.WaitForAddToCollection(); err != nil {
		return err
	}
	return d.ClickAddToCollection()
}

// ParseCollection scans the collection page and marks cards that carry an
// ownership badge. Containers with unknown titles and per-container faults
// are skipped; partial results beat no results. The returned map always
// carries all nine known cards.
func (d *Driver) ParseCollection() game.Collection {
	owned := game.NewCollection()
	if d.page == nil {
		return owned
	}

	containers := d.page.Locator(cardContainerSelector)
	count, err := containers.Count()
	if err != nil {
		logging.Warnf("enumerate collection cards: %v", err)
		return owned
	}

	for i := 0; i < count; i++ {
		card := containers.Nth(i)

		titles := card.Locator(cardTitleSelector)
		n, err := titles.Count()
		if err != nil || n == 0 {
			continue
		}
		title, err := titles.First().InnerText()
		if err != nil {
			continue
		}
		title = strings.TrimSpace(title)
		if _, known := owned[title]; !known {
			continue
		}

		badges := card.Locator(badgeSelector)
		bn, err := badges.Count()
		if err != nil {
			continue
		}
		for j := 0; j < bn; j++ {
			text, err := badges.Nth(j).InnerText()
			if err != nil {
				continue
			}
			if game.IsOwnedBadge(text) {
				owned[title] = true
				break
			}
		}
	}

	return owned
}
