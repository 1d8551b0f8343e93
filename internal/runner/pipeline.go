// Package runner runs the per-profile game workflow and orchestrates it
// across profiles under a bounded worker pool.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/darumalabs/zashabot/internal/adspower"
	"github.com/darumalabs/zashabot/internal/game"
	"github.com/darumalabs/zashabot/internal/logging"
)

const (
	// browserSettle is how long to wait after a profile start before
	// attaching the driver; the remote browser needs a moment to come up.
	browserSettle = 3 * time.Second

	// stopBudget bounds the gateway stop call issued during cleanup. Cleanup
	// runs on its own context so cancellation cannot skip it.
	stopBudget = 30 * time.Second
)

// Gateway starts and stops remote browser profiles.
type Gateway interface {
	Start(ctx context.Context, serial string) (adspower.StartResult, error)
	Stop(ctx context.Context, serial string) error
}

// Driver drives one browser session through the game workflow.
type Driver interface {
	Connect(endpoint string) error
	NavigateToGame() error
	NavigateToCollection() error
	TicketCount() int
	IsPlayButtonVisible() bool
	PlayRound() error
	ParseCollection() game.Collection
	Close()
}

// Recorder persists per-profile outcomes.
type Recorder interface {
	UpdateCollection(ctx context.Context, serial string, cards game.Collection) error
	UpdateStatus(ctx context.Context, serial string, status string) error
}

// Outcome is the final result of processing one profile.
type Outcome struct {
	Serial  string
	Success bool
	Cards   game.Collection
	Status  string
}

// Runner holds the collaborators shared by all profile pipelines.
type Runner struct {
	Gateway   Gateway
	Recorder  Recorder
	NewDriver func() Driver

	// MaxWorkers bounds the number of profiles processed in parallel.
	// Defaults to 3.
	MaxWorkers int

	// StartupSettle overrides browserSettle, for tests.
	StartupSettle time.Duration
}

func (r *Runner) settleDelay() time.Duration {
	if r.StartupSettle > 0 {
		return r.StartupSettle
	}
	return browserSettle
}

// RunProfile runs the full workflow for one profile: start the remote
// browser, attach, play until tickets run out or ctx is cancelled, then
// parse the collection.
//
// It is the fault-isolation boundary for a profile: panics become failure
// outcomes, and on every exit path the driver is closed and the gateway is
// asked to stop the profile.
func (r *Runner) RunProfile(ctx context.Context, serial string) (out Outcome) {
	cards := game.Collection{}
	var drv Driver

	defer func() {
		if drv != nil {
			drv.Close()
		}
		stopCtx, cancel := context.WithTimeout(context.Background(), stopBudget)
		defer cancel()
		if err := r.Gateway.Stop(stopCtx, serial); err != nil {
			logging.Warnf("[%s] stop profile: %v", serial, err)
		}
	}()
	defer func() {
		if p := recover(); p != nil {
			logging.Errorf("[%s] recovered: %v", serial, p)
			out = Outcome{Serial: serial, Cards: cards, Status: fmt.Sprintf("error: %v", p)}
		}
	}()

	logging.Infof("[%s] starting profile", serial)
	res, err := r.Gateway.Start(ctx, serial)
	if err != nil {
		return Outcome{Serial: serial, Cards: cards, Status: fmt.Sprintf("gateway error: %v", err)}
	}
	logging.Infof("[%s] CDP endpoint: %s", serial, res.WSEndpoint)

	select {
	case <-time.After(r.settleDelay()):
	case <-ctx.Done():
	}

	drv = r.NewDriver()
	if err := drv.Connect(res.WSEndpoint); err != nil {
		logging.Warnf("[%s] connect: %v", serial, err)
		return Outcome{Serial: serial, Cards: cards, Status: "connect failed"}
	}

	if err := drv.NavigateToGame(); err != nil {
		logging.Warnf("[%s] navigate to game: %v", serial, err)
		return Outcome{Serial: serial, Cards: cards, Status: "navigation failed"}
	}

	tickets := drv.TicketCount()
	logging.Infof("[%s] tickets: %d", serial, tickets)
	if tickets > 0 && !drv.IsPlayButtonVisible() {
		logging.Warnf("[%s] play button not visible yet", serial)
	}

	rounds := 0
	for tickets > 0 && ctx.Err() == nil {
		logging.Infof("[%s] playing round (tickets remaining: %d)", serial, tickets)
		if err := drv.PlayRound(); err != nil {
			logging.Warnf("[%s] round failed, stopping: %v", serial, err)
			break
		}
		rounds++

		if ctx.Err() != nil {
			logging.Infof("[%s] cancelled, stopping play loop", serial)
			break
		}
		if err := drv.NavigateToGame(); err != nil {
			logging.Warnf("[%s] re-navigate to game: %v", serial, err)
			break
		}
		tickets = drv.TicketCount()
	}
	logging.Infof("[%s] played %d rounds", serial, rounds)

	if err := drv.NavigateToCollection(); err != nil {
		logging.Warnf("[%s] navigate to collection: %v", serial, err)
		return Outcome{Serial: serial, Cards: cards, Status: "collection navigation failed"}
	}

	cards = drv.ParseCollection()
	logging.Infof("[%s] owned cards: %v", serial, cards.Owned())

	return Outcome{
		Serial:  serial,
		Success: true,
		Cards:   cards,
		Status:  fmt.Sprintf("success: played %d rounds", rounds),
	}
}
