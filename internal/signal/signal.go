package signal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"gram-rakshak/backend/internal/subject"
)

// Polarity marks an indicator as counting against or in favour of the subject.
type Polarity string

const (
	Suspicious Polarity = "suspicious"
	Benign     Polarity = "benign"
)

// Indicator is a single weighted signal contributed by one extractor.
type Indicator struct {
	Name     string
	Weight   int
	Polarity Polarity
	Detail   string
}

// Extractor inspects a canonical subject and emits zero or more indicators.
// Implementations must not mutate the subject and must be safe to run
// concurrently with other extractors on the same subject.
type Extractor interface {
	Name() string
	Inspect(ctx context.Context, subj *subject.Subject) ([]Indicator, error)
}

// RunResult is the collected output of a concurrent extraction pass.
type RunResult struct {
	Indicators []Indicator
	Partial    bool
}

// Run executes all extractors concurrently against the subject. Each extractor
// gets its own timeout budget; a failed or timed-out extractor contributes
// zero indicators instead of failing the pass. Indicator order follows
// extractor registration order, which fixes reason ordering downstream.
func Run(ctx context.Context, subj *subject.Subject, extractors []Extractor, timeout time.Duration) RunResult {
	slots := make([][]Indicator, len(extractors))

	var (
		mu      sync.Mutex
		partial bool
	)

	var wg sync.WaitGroup
	for i, ex := range extractors {
		wg.Add(1)
		go func(idx int, ex Extractor) {
			defer wg.Done()

			exCtx := ctx
			cancel := context.CancelFunc(func() {})
			if timeout > 0 {
				exCtx, cancel = context.WithTimeout(ctx, timeout)
			}
			defer cancel()

			indicators, err := ex.Inspect(exCtx, subj)
			if err != nil {
				logrus.WithError(err).WithField("extractor", ex.Name()).Warn("signal extractor failed")
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					mu.Lock()
					partial = true
					mu.Unlock()
				}
				return
			}
			slots[idx] = indicators
		}(i, ex)
	}
	wg.Wait()

	if ctx.Err() != nil {
		partial = true
	}

	var out []Indicator
	for _, inds := range slots {
		out = append(out, inds...)
	}
	return RunResult{Indicators: out, Partial: partial}
}
