package runner

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/darumalabs/zashabot/internal/logging"
)

// RunAll runs the profile pipeline for every serial under a bounded worker
// pool and returns the outcomes keyed by serial.
//
// Submission stops at the first cancellation check that fails; already
// submitted pipelines run to completion, including their cleanup. Outcomes
// are drained in completion order and written through to the recorder
// immediately, so partial progress survives a crash later in the run.
func (r *Runner) RunAll(ctx context.Context, serials []string) map[string]Outcome {
	workers := r.MaxWorkers
	if workers <= 0 {
		workers = 3
	}

	runID := uuid.NewString()[:8]
	logging.Infof("run %s: %d profiles, %d workers", runID, len(serials), workers)

	// Buffered so abandoned workers never block on send after the drain
	// loop stops early.
	results := make(chan Outcome, len(serials))

	var g errgroup.Group
	g.SetLimit(workers)

	go func() {
		for _, serial := range serials {
			if ctx.Err() != nil {
				logging.Warnf("run %s: cancelled, skipping remaining profiles", runID)
				break
			}
			g.Go(func() error {
				results <- r.RunProfile(ctx, serial)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	outcomes := make(map[string]Outcome, len(serials))
	for out := range results {
		if ctx.Err() != nil {
			logging.Warnf("run %s: cancelled, abandoning in-flight profiles", runID)
			break
		}

		outcomes[out.Serial] = out
		if out.Success {
			logging.Infof("[%s] %s", out.Serial, out.Status)
		} else {
			logging.Warnf("[%s] %s", out.Serial, out.Status)
		}
		r.record(out)
	}

	return outcomes
}

// record writes one outcome through to the recorder. Recording is
// best-effort secondary to the gameplay outcome: failures are logged and
// never fail the run.
func (r *Runner) record(out Outcome) {
	if r.Recorder == nil {
		return
	}

	ctx := context.Background()
	if out.Success {
		if err := r.Recorder.UpdateCollection(ctx, out.Serial, out.Cards); err != nil {
			logging.Warnf("[%s] record collection: %v", out.Serial, err)
		}
	}
	if err := r.Recorder.UpdateStatus(ctx, out.Serial, out.Status); err != nil {
		logging.Warnf("[%s] record status: %v", out.Serial, err)
	}
}

// Summarize reports the success count and the sorted serials of failed
// profiles.
func Summarize(outcomes map[string]Outcome) (successes int, failed []string) {
	for serial, out := range outcomes {
		if out.Success {
			successes++
		} else {
			failed = append(failed, serial)
		}
	}
	sort.Strings(failed)
	return successes, failed
}
