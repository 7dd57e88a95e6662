// Package countries turns cargo classifications into the country constraints
// of a route search.
package countries

import (
	"errors"
	"fmt"

	"github.com/globalroute/navigator/pkg/classifier"
)

// ErrInvalidPolicy is returned for an unknown handling flag.
var ErrInvalidPolicy = errors.New("invalid country policy")

// ProhibitedHandling says what to do with countries that prohibit the cargo.
type ProhibitedHandling string

const (
	ProhibitedIgnore ProhibitedHandling = "ignore"
	ProhibitedAvoid  ProhibitedHandling = "avoid"
)

// RestrictedHandling says what to do with countries that restrict the cargo.
type RestrictedHandling string

const (
	RestrictedIgnore  RestrictedHandling = "ignore"
	RestrictedAvoid   RestrictedHandling = "avoid"
	RestrictedPenalty RestrictedHandling = "penalty"
)

// Policy pairs the two handling flags of a request.
type Policy struct {
	Prohibited ProhibitedHandling
	Restricted RestrictedHandling
}

// Validate checks both flags.
func (p Policy) Validate() error {
	switch p.Prohibited {
	case ProhibitedIgnore, ProhibitedAvoid:
	default:
		return fmt.Errorf("%w: prohibited_flag %q", ErrInvalidPolicy, p.Prohibited)
	}
	switch p.Restricted {
	case RestrictedIgnore, RestrictedAvoid, RestrictedPenalty:
	default:
		return fmt.Errorf("%w: restricted_flag %q", ErrInvalidPolicy, p.Restricted)
	}
	return nil
}

// NeedsClassification reports whether the policy uses the classifier at all.
func (p Policy) NeedsClassification() bool {
	return p.Prohibited != ProhibitedIgnore || p.Restricted != RestrictedIgnore
}

// Constraints are the country sets applied to one search.
type Constraints struct {
	Avoid   []string
	Penalty []string
}

// Merge applies the policy table to a classification:
//
//	prohibited  restricted  result
//	ignore      ignore      nothing
//	ignore      penalty     penalty = restricted
//	ignore      avoid       avoid = restricted
//	avoid       ignore      avoid = prohibited
//	avoid       penalty     avoid = prohibited, penalty = restricted
//	avoid       avoid       avoid = prohibited + restricted
func Merge(p Policy, c classifier.Classification) Constraints {
	var out Constraints
	if p.Prohibited == ProhibitedAvoid {
		out.Avoid = append(out.Avoid, c.ProhibitedIn...)
	}
	switch p.Restricted {
	case RestrictedAvoid:
		out.Avoid = append(out.Avoid, c.RestrictedIn...)
	case RestrictedPenalty:
		out.Penalty = append(out.Penalty, c.RestrictedIn...)
	}
	return out
}
