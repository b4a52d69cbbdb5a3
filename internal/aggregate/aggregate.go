// Package aggregate fans a read operation out across multiple accounts and
// merges the results into one globally time-ordered sequence.
//
// A single account's failure is contained: it contributes a labeled
// diagnostic instead of items and never aborts the overall operation. This
// partial-success contract is deliberate and must be preserved by callers
// when rendering results.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/manymail/manymail/internal/config"
	"github.com/manymail/manymail/internal/gmail"
)

const (
	// MinLimit and MaxLimit bound the caller-requested result limit.
	MinLimit = 1
	MaxLimit = 100

	// DefaultLimit applies when the caller does not request a limit.
	DefaultLimit = 10
)

// FetchFunc fetches the emails for one account. Implementations are
// supplied by the tool handlers and close over the Gmail client cache.
type FetchFunc func(ctx context.Context, acct config.Account) ([]gmail.ParsedEmail, error)

// Result is the outcome of a fan-out run.
type Result struct {
	// Emails is the merged sequence, sorted descending by InternalDate and
	// truncated to the clamped limit.
	Emails []gmail.ParsedEmail

	// TotalFound is the merged total before truncation.
	TotalFound int

	// Errors holds one "<accountID>: <message>" diagnostic per failed
	// account, in account order.
	Errors []string
}

// ClampLimit bounds a requested limit to [MinLimit, MaxLimit].
func ClampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Run invokes fetch once per account concurrently, waits for every fetch to
// finish, and merges the successes. Truncation is global, after sorting: a
// single very active account may legitimately fill the entire result.
func Run(ctx context.Context, accounts []config.Account, fetch FetchFunc, limit int) Result {
	limit = ClampLimit(limit)

	type outcome struct {
		emails []gmail.ParsedEmail
		err    error
	}

	// One slot per account; no shared mutable state between fetches.
	outcomes := make([]outcome, len(accounts))

	var wg sync.WaitGroup
	for i, acct := range accounts {
		wg.Add(1)
		go func(i int, acct config.Account) {
			defer wg.Done()
			emails, err := fetch(ctx, acct)
			outcomes[i] = outcome{emails: emails, err: err}
		}(i, acct)
	}
	wg.Wait()

	var res Result
	for i, out := range outcomes {
		if out.err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", accounts[i].ID, out.err))
			continue
		}
		res.Emails = append(res.Emails, out.emails...)
	}

	// Stable keeps per-account provider order for equal timestamps.
	sort.SliceStable(res.Emails, func(a, b int) bool {
		return res.Emails[a].InternalDate > res.Emails[b].InternalDate
	})

	res.TotalFound = len(res.Emails)
	if len(res.Emails) > limit {
		res.Emails = res.Emails[:limit]
	}
	return res
}
