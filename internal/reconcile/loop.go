// Package reconcile implements the paginated record-reconciliation loop shared
// by the import and maintenance workflows: walk every page of a remote
// collection, apply a per-record decision, pace the network writes, and
// accumulate per-outcome counters.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrBadCursor is returned when a page reports more results but carries no
// continuation token. The remote contract requires a token whenever has_more
// is set, so this is a hard error rather than a silent stop.
var ErrBadCursor = errors.New("page reports more results but no continuation token")

// FailedOutcome is the default counter bucket for records whose apply step
// returned an error.
const FailedOutcome = "failed"

// Cursor is the pagination state returned alongside each page of records.
// The loop terminates when HasMore is false; Next must be non-empty whenever
// HasMore is true.
type Cursor struct {
	HasMore bool
	Next    string
}

// FetchFunc retrieves one page of records. An empty cursor requests the first
// page. A fetch error is fatal to the whole run.
type FetchFunc[T any] func(ctx context.Context, cursor string) ([]T, Cursor, error)

// DecideFunc inspects a single record and returns the action to take.
type DecideFunc[T any] func(ctx context.Context, record T) Action

// Action is the outcome of a per-record decision. A nil Apply is a pure skip:
// it is counted under Outcome and triggers no network call and no pacing.
// A non-nil Apply performs the record's network work (lookup and/or patch)
// and returns the counter bucket for its result; an error from Apply is
// logged and counted under Failure without aborting the run.
type Action struct {
	Outcome string
	Failure string
	Apply   func(ctx context.Context) (string, error)
}

// Skip returns an action that only increments the given counter.
func Skip(outcome string) Action {
	return Action{Outcome: outcome}
}

// Do returns an action that runs apply and counts whatever bucket it reports.
func Do(apply func(ctx context.Context) (string, error)) Action {
	return Action{Apply: apply}
}

// Loop drives the fetch/decide/apply cycle over every page of a collection.
type Loop[T any] struct {
	Fetch    FetchFunc[T]
	Decide   DecideFunc[T]
	Throttle Throttle     // pacing gate applied after every network action; nil means unlimited
	Logger   *slog.Logger // defaults to slog.Default
}

// Run walks all pages until the cursor reports no more results. Per-record
// apply errors are counted and the loop continues; a page-fetch error aborts
// the run and is returned along with the counts accumulated so far, so the
// caller can still report and flush partial results.
func (l *Loop[T]) Run(ctx context.Context) (Counts, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	throttle := l.Throttle
	if throttle == nil {
		throttle = Unlimited()
	}

	counts := Counts{}
	cursor := ""
	for {
		records, page, err := l.Fetch(ctx, cursor)
		if err != nil {
			return counts, fmt.Errorf("fetch page: %w", err)
		}

		for _, record := range records {
			action := l.Decide(ctx, record)

			if action.Apply == nil {
				counts.Add(orDefault(action.Outcome, "skipped"))
				continue
			}

			outcome, err := action.Apply(ctx)
			if err != nil {
				logger.Error("record update failed", "error", err)
				counts.Add(orDefault(action.Failure, FailedOutcome))
			} else {
				counts.Add(orDefault(outcome, "updated"))
			}

			// Pace after every per-record network interaction, success or not.
			if err := throttle.Wait(ctx); err != nil {
				return counts, err
			}
		}

		if !page.HasMore {
			return counts, nil
		}
		if page.Next == "" {
			return counts, ErrBadCursor
		}
		cursor = page.Next
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
