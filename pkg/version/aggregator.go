package version

import (
	"context"
	"log/slog"
	"time"
)

// Result is the aggregated, ranked candidate list.
type Result struct {
	Candidates []Candidate `json:"candidates" yaml:"candidates"`
	// Outcome is OutcomeOK when a source produced candidates, otherwise
	// the most specific failure seen.
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	// Fallback is set when Candidates came from the static list.
	Fallback        bool    `json:"fallback" yaml:"fallback"`
	RegistryOutcome Outcome `json:"registryOutcome" yaml:"registryOutcome"`
	ReleaseOutcome  Outcome `json:"releaseOutcome" yaml:"releaseOutcome"`
}

// Tags returns the raw candidate strings in order.
func (r Result) Tags() []string {
	tags := make([]string, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		tags = append(tags, c.Raw)
	}
	return tags
}

// BaseVersions returns the distinct unsuffixed versions, newest first.
func (r Result) BaseVersions() []string {
	return StableReleases(r.Tags())
}

// Aggregator combines the registry and release feeds into one list.
type Aggregator struct {
	Registry Source
	Release  Source
	// Fallback is used when neither source yields candidates.
	Fallback []Candidate
}

// NewAggregator creates an Aggregator with the embedded fallback list.
func NewAggregator(registry, release Source) *Aggregator {
	return &Aggregator{
		Registry: registry,
		Release:  release,
		Fallback: DefaultFallback(),
	}
}

// Resolve queries the sources sequentially and applies the decision table:
//   - registry with base versions is definitive
//   - registry with only aliases is kept and merged with releases
//   - a release feed that rejects the token is retried once anonymously
//   - when nothing is usable the static list is returned with Fallback set
//
// Resolve never returns an empty candidate list.
func (a *Aggregator) Resolve(ctx context.Context, token string, simulatePublic bool) Result {
	res := Result{
		Outcome:         OutcomeOK,
		RegistryOutcome: OutcomeSkipped,
		ReleaseOutcome:  OutcomeSkipped,
	}
	authenticated := token != "" && !simulatePublic
	failure := OutcomeOK
	var supplementary []Candidate

	if authenticated && a.Registry != nil {
		reg := a.fetch(ctx, a.Registry, token, simulatePublic)
		res.RegistryOutcome = reg.Outcome
		switch {
		case reg.Outcome == OutcomeOK && hasBaseVersion(reg.Candidates):
			res.Candidates = reg.Candidates
			return res
		case reg.Outcome == OutcomeOK:
			supplementary = reg.Candidates
		default:
			failure = moreSpecific(failure, reg.Outcome)
		}
	}

	if a.Release != nil {
		rel := a.fetch(ctx, a.Release, token, simulatePublic)
		if rel.Outcome == OutcomeAuthFailed && authenticated {
			slog.Warn("release feed rejected token, retrying anonymously")
			rel = a.fetch(ctx, a.Release, "", simulatePublic)
		}
		res.ReleaseOutcome = rel.Outcome

		if rel.Outcome == OutcomeOK {
			res.Candidates = Merge(supplementary, rel.Candidates)
			return res
		}
		failure = moreSpecific(failure, rel.Outcome)

		if len(supplementary) > 0 {
			res.Candidates = supplementary
			if rel.Outcome == OutcomeRateLimited {
				res.Outcome = OutcomeRateLimited
			}
			return res
		}
	}

	if failure == OutcomeOK {
		failure = OutcomeEmpty
	}
	res.Outcome = failure
	res.Fallback = true
	res.Candidates = a.fallback()
	fallbackTotal.Inc()
	slog.Debug("using static version list",
		slog.String("outcome", string(failure)),
		slog.Int("count", len(res.Candidates)))
	return res
}

func (a *Aggregator) fallback() []Candidate {
	if len(a.Fallback) > 0 {
		return a.Fallback
	}
	return DefaultFallback()
}

func (a *Aggregator) fetch(ctx context.Context, src Source, token string, simulatePublic bool) FetchResult {
	start := time.Now()
	res := src.Fetch(ctx, token, simulatePublic)
	name := string(src.Name())

	fetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	fetchTotal.WithLabelValues(name, string(res.Outcome)).Inc()

	attrs := []any{
		slog.String("source", name),
		slog.String("outcome", string(res.Outcome)),
		slog.Int("candidates", len(res.Candidates)),
		slog.Bool("authenticated", token != "" && !simulatePublic),
	}
	if res.Err != nil {
		attrs = append(attrs, slog.String("error", res.Err.Error()))
	}
	slog.Debug("version source queried", attrs...)
	return res
}

func hasBaseVersion(cs []Candidate) bool {
	for _, c := range cs {
		if c.Kind == KindBaseSemver {
			return true
		}
	}
	return false
}
