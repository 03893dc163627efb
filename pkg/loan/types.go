package loan

import (
	"fmt"
	"time"
)

// EntityLevel is the scope a question applies to.
type EntityLevel string

const (
	LevelProposal       EntityLevel = "PROPOSAL"
	LevelBorrower       EntityLevel = "BORROWER"
	LevelJob            EntityLevel = "JOB"
	LevelAsset          EntityLevel = "ASSET"
	LevelLiability      EntityLevel = "LIABILITY"
	LevelProperty       EntityLevel = "PROPERTY"
	LevelRealEstateOwned EntityLevel = "REAL_ESTATE_OWNED"
)

// EvaluationOrder is the fixed order entity levels are walked by the
// evaluator. It also defines which level names are valid.
var EvaluationOrder = []EntityLevel{
	LevelProposal,
	LevelBorrower,
	LevelJob,
	LevelAsset,
	LevelLiability,
	LevelProperty,
	LevelRealEstateOwned,
}

// ParseEntityLevel validates a level name from catalog YAML.
func ParseEntityLevel(s string) (EntityLevel, error) {
	for _, l := range EvaluationOrder {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown entity level %q", s)
}

// Singleton reports whether the level has a single null entity slot rather
// than an entity population (proposal- and property-scoped questions).
func (l EntityLevel) Singleton() bool {
	return l == LevelProposal || l == LevelProperty
}

// EntityRef is one instance of a borrower, job, asset, liability, or owned
// property, materialized by the state loader.
type EntityRef struct {
	Pid         string `msgpack:"pid" json:"pid"`
	DisplayName string `msgpack:"displayName" json:"displayName"`
	Fields      Fields `msgpack:"fields" json:"fields"`
}

// Entities holds the five entity populations of a proposal.
type Entities struct {
	Borrowers       []EntityRef `msgpack:"borrowers" json:"borrowers"`
	Jobs            []EntityRef `msgpack:"jobs" json:"jobs"`
	Assets          []EntityRef `msgpack:"assets" json:"assets"`
	Liabilities     []EntityRef `msgpack:"liabilities" json:"liabilities"`
	RealEstateOwned []EntityRef `msgpack:"realEstateOwned" json:"realEstateOwned"`
}

// ForLevel returns the entity population for a level. Singleton levels
// return nil; callers treat that as a single null slot.
func (e *Entities) ForLevel(level EntityLevel) []EntityRef {
	switch level {
	case LevelBorrower:
		return e.Borrowers
	case LevelJob:
		return e.Jobs
	case LevelAsset:
		return e.Assets
	case LevelLiability:
		return e.Liabilities
	case LevelRealEstateOwned:
		return e.RealEstateOwned
	default:
		return nil
	}
}

// LoanState is the full per-proposal working set. It is materialized by the
// loader on first request, owned by the state cache, and mutated only
// through cache update operations. Version increases strictly on each
// mutation within a process; readers use it for staleness detection only.
type LoanState struct {
	ProposalPid string
	Version     int64
	LoadedAt    time.Time

	// Fields holds proposal and property attributes flattened into one map;
	// property columns carry a "property_" prefix to avoid collisions.
	Fields Fields

	Entities Entities

	// Answered is the set of question ids already answered for this deal.
	Answered map[string]struct{}
}

// IsAnswered reports whether a question id has been answered.
func (s *LoanState) IsAnswered(questionID string) bool {
	_, ok := s.Answered[questionID]
	return ok
}

// AnsweredList returns the answered set as a sorted-insensitive slice for
// transport; the msgpack codec has no native set type.
func (s *LoanState) AnsweredList() []string {
	out := make([]string, 0, len(s.Answered))
	for id := range s.Answered {
		out = append(out, id)
	}
	return out
}

// AnsweredSet rebuilds the working-set form from a transported sequence.
func AnsweredSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
