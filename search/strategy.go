package search

import (
	"fmt"
	"strings"

	"github.com/poiesic/newsvec/core"
)

// Strategy selects how the store is queried.
type Strategy int

const (
	// StrategyVector is a pure nearest-neighbour search on the body vector.
	StrategyVector Strategy = iota + 1
	// StrategyHybrid combines filters, a title match and kNN on both vectors.
	StrategyHybrid
)

// AllStrategies lists every strategy in the order results are reported.
var AllStrategies = []Strategy{StrategyVector, StrategyHybrid}

func (s Strategy) String() string {
	switch s {
	case StrategyVector:
		return "vector"
	case StrategyHybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Label is the heading printed above a strategy's results.
func (s Strategy) Label() string {
	switch s {
	case StrategyVector:
		return "Vector similarity"
	case StrategyHybrid:
		return "Hybrid (filters + title + vectors)"
	default:
		return s.String()
	}
}

// ParseStrategy parses "vector", "hybrid" or "both".
func ParseStrategy(name string) ([]Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vector":
		return []Strategy{StrategyVector}, nil
	case "hybrid":
		return []Strategy{StrategyHybrid}, nil
	case "both", "":
		return AllStrategies, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// ResultSet holds the ranked rows of one strategy.
type ResultSet struct {
	Strategy Strategy
	Rows     []core.SearchResultRow
}

// Label is the strategy's heading.
func (r ResultSet) Label() string {
	return r.Strategy.Label()
}

// Empty reports whether the strategy matched nothing.
func (r ResultSet) Empty() bool {
	return len(r.Rows) == 0
}

// Outcome holds one ResultSet per requested strategy, in request order.
type Outcome struct {
	Sets []ResultSet
}

// Set returns the result set of strategy s.
func (o *Outcome) Set(s Strategy) (ResultSet, bool) {
	for _, set := range o.Sets {
		if set.Strategy == s {
			return set, true
		}
	}
	return ResultSet{}, false
}
