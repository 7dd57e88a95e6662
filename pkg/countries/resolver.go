package countries

import (
	"context"
	"errors"
	"log/slog"

	"github.com/globalroute/navigator/pkg/classifier"
	"github.com/globalroute/navigator/pkg/metrics"
)

var errNoClassifier = errors.New("no classifier configured")

// Resolver combines the explicit avoid list of a request with the
// classifier-derived constraints.
type Resolver struct {
	classifier classifier.Classifier
}

// NewResolver creates a resolver. A nil classifier makes every policy that
// needs one resolve as unavailable.
func NewResolver(c classifier.Classifier) *Resolver {
	return &Resolver{classifier: c}
}

// Resolve returns the constraints of a search and the classification used.
// Classifier failures never fail the request: they are logged, counted and
// reported through an unavailable result, and only the explicit avoid list
// applies.
func (r *Resolver) Resolve(ctx context.Context, explicitAvoid []string, description string, p Policy) (Constraints, classifier.Result) {
	out := Constraints{Avoid: dedupe(explicitAvoid), Penalty: []string{}}

	if !p.NeedsClassification() {
		return out, classifier.Result{Available: true}
	}

	if r.classifier == nil {
		metrics.ClassifierCalls.WithLabelValues("unavailable").Inc()
		return out, classifier.Unavailable(errNoClassifier)
	}

	c, err := r.classifier.Classify(ctx, description)
	if err != nil {
		slog.Warn("Cargo classification unavailable, continuing without it", "error", err)
		metrics.ClassifierCalls.WithLabelValues("unavailable").Inc()
		return out, classifier.Unavailable(err)
	}
	metrics.ClassifierCalls.WithLabelValues("ok").Inc()

	merged := Merge(p, c)
	out.Avoid = dedupe(append(out.Avoid, merged.Avoid...))
	out.Penalty = dedupe(merged.Penalty)

	slog.Debug("Country constraints resolved", "avoid", out.Avoid, "penalty", out.Penalty)
	return out, classifier.Result{Classification: c, Available: true}
}

// dedupe removes repeated codes keeping the first occurrence. It never
// returns nil.
func dedupe(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
