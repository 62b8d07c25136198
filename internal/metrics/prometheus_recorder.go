package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docsite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	rawRequests     *prom.CounterVec
	resolveDuration prom.Histogram
	candidateProbes *prom.CounterVec
	rewrites        *prom.CounterVec
	sitemapRuns     *prom.CounterVec
	sitemapURLs     prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		rawRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "raw_requests_total",
			Help:      "Raw document requests by outcome and resolved locale",
		}, []string{"outcome", "locale"}),
		resolveDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "raw_resolve_duration_seconds",
			Help:      "Time spent resolving a raw document request",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		candidateProbes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "raw_candidates_probed_total",
			Help:      "Candidate files probed, by whether the read succeeded",
		}, []string{"result"}),
		rewrites: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "request_rewrites_total",
			Help:      "Front-line request classification decisions",
		}, []string{"kind"}),
		sitemapRuns: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sitemap_generations_total",
			Help:      "Sitemap generation runs by result",
		}, []string{"result"}),
		sitemapURLs: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "sitemap_urls",
			Help:      "URLs written by the last successful sitemap generation",
		}),
	}
	reg.MustRegister(pr.rawRequests, pr.resolveDuration, pr.candidateProbes, pr.rewrites, pr.sitemapRuns, pr.sitemapURLs)
	return pr
}

func (p *PrometheusRecorder) IncRawRequest(outcome Outcome, locale string) {
	p.rawRequests.WithLabelValues(string(outcome), locale).Inc()
}

func (p *PrometheusRecorder) ObserveRawResolveDuration(d time.Duration) {
	p.resolveDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCandidateProbe(found bool) {
	res := "miss"
	if found {
		res = "hit"
	}
	p.candidateProbes.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) IncRewrite(kind string) {
	p.rewrites.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncSitemapGeneration(result ResultLabel) {
	p.sitemapRuns.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetSitemapURLs(n int) {
	p.sitemapURLs.Set(float64(n))
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
