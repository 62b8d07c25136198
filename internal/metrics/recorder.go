package metrics

import "time"

// Outcome labels the terminal state of a raw document request.
type Outcome string

const (
	OutcomeServed           Outcome = "served"
	OutcomeInvalidPath      Outcome = "invalid_path"
	OutcomeNotFound         Outcome = "not_found"
	OutcomeMethodNotAllowed Outcome = "method_not_allowed"
	OutcomeCanceled         Outcome = "canceled"
	OutcomeError            Outcome = "error"
)

// ResultLabel enumerates background task result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultEmpty   ResultLabel = "empty"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for document resolution and sitemap generation.
type Recorder interface {
	IncRawRequest(outcome Outcome, locale string)
	ObserveRawResolveDuration(d time.Duration)
	IncCandidateProbe(found bool)
	IncRewrite(kind string)
	IncSitemapGeneration(result ResultLabel)
	SetSitemapURLs(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncRawRequest(Outcome, string)           {}
func (NoopRecorder) ObserveRawResolveDuration(time.Duration) {}
func (NoopRecorder) IncCandidateProbe(bool)                  {}
func (NoopRecorder) IncRewrite(string)                       {}
func (NoopRecorder) IncSitemapGeneration(ResultLabel)        {}
func (NoopRecorder) SetSitemapURLs(int)                      {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
