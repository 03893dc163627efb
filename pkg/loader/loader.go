// Package loader materializes a proposal's working set from the system of
// record into a normalized LoanState.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"originate-hq/meridian/pkg/loan"
	"originate-hq/meridian/pkg/record"
)

// Loader resolves proposalPid -> LoanState.
type Loader struct {
	store  record.Store
	logger *slog.Logger
}

// New creates a Loader over the given store.
func New(store record.Store, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: store, logger: logger}
}

// Load reads the proposal, its borrower graph, the subject property, and the
// answered question ids, and assembles a LoanState. The four child
// collections and the property and answered fetches run in parallel once
// the borrower pid set is known.
func (l *Loader) Load(ctx context.Context, proposalPid string) (*loan.LoanState, error) {
	start := time.Now()

	proposal, err := l.store.GetProposal(ctx, proposalPid)
	if err != nil {
		return nil, err
	}

	borrowers, err := l.store.ListBorrowers(ctx, proposal.DealPid)
	if err != nil {
		return nil, fmt.Errorf("load borrowers for deal %s: %w", proposal.DealPid, err)
	}
	borrowerPids := make([]string, len(borrowers))
	for i, b := range borrowers {
		borrowerPids[i] = b.Pid
	}

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		firstErr    error
		jobs        []record.Entity
		assets      []record.Entity
		liabilities []record.Entity
		reo         []record.Entity
		property    map[string]any
		answered    []string
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	fetch := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				fail(err)
			}
		}()
	}

	fetch(func() (err error) { jobs, err = l.store.ListJobs(ctx, borrowerPids); return })
	fetch(func() (err error) { assets, err = l.store.ListAssets(ctx, borrowerPids); return })
	fetch(func() (err error) { liabilities, err = l.store.ListLiabilities(ctx, borrowerPids); return })
	fetch(func() (err error) { reo, err = l.store.ListRealEstateOwned(ctx, borrowerPids); return })
	fetch(func() (err error) { property, err = l.store.GetProperty(ctx, proposal.DealPid); return })
	fetch(func() (err error) { answered, err = l.store.ListAnsweredQuestions(ctx, proposal.DealPid); return })
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("load proposal %s: %w", proposalPid, firstErr)
	}

	fields := flattenColumns(proposal.Columns, "")
	for k, v := range flattenColumns(property, "property_") {
		fields[k] = v
	}

	state := &loan.LoanState{
		ProposalPid: proposalPid,
		Version:     time.Now().UnixNano(),
		LoadedAt:    time.Now(),
		Fields:      fields,
		Entities: loan.Entities{
			Borrowers:       borrowerRefs(borrowers),
			Jobs:            entityRefs(jobs),
			Assets:          entityRefs(assets),
			Liabilities:     entityRefs(liabilities),
			RealEstateOwned: entityRefs(reo),
		},
		Answered: loan.AnsweredSet(answered),
	}

	l.logger.Debug("loan state loaded",
		"proposal_pid", proposalPid,
		"deal_pid", proposal.DealPid,
		"borrowers", len(borrowers),
		"answered", len(answered),
		"elapsed", time.Since(start),
	)

	return state, nil
}

// flattenColumns converts column names to lower-camel field keys, applying
// an optional prefix ("property_") to prevent collisions with proposal
// columns. Nil column maps yield an empty result, never an error.
func flattenColumns(columns map[string]any, prefix string) loan.Fields {
	fields := make(loan.Fields, len(columns))
	for column, value := range columns {
		fields[prefix+loan.LowerCamel(column)] = loan.FromAny(value)
	}
	return fields
}

func entityRefs(entities []record.Entity) []loan.EntityRef {
	out := make([]loan.EntityRef, 0, len(entities))
	for _, e := range entities {
		out = append(out, loan.EntityRef{
			Pid:         e.Pid,
			DisplayName: displayName(e.Columns, e.Pid),
			Fields:      flattenColumns(e.Columns, ""),
		})
	}
	return out
}

func borrowerRefs(borrowers []record.Entity) []loan.EntityRef {
	return entityRefs(borrowers)
}

// displayName builds "First Last" from the row, trimmed, falling back to a
// pid-tagged placeholder for rows with no name columns.
func displayName(columns map[string]any, pid string) string {
	first, _ := columns["first_name"].(string)
	last, _ := columns["last_name"].(string)
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name != "" {
		return name
	}
	if employer, ok := columns["employer_name"].(string); ok && employer != "" {
		return employer
	}
	return "Record " + pid
}
