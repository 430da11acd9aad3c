package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Track processing metrics
	TracksProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "releasemgr_tracks_processed_total",
			Help: "Total number of tracks processed",
		},
	)

	VerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "releasemgr_verdicts_total",
			Help: "Total number of track verdicts by outcome",
		},
		[]string{"verdict"},
	)

	TrackReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "releasemgr_track_reconcile_duration_seconds",
			Help:    "Time taken to reconcile one track in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Test platform metrics
	InstancesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "releasemgr_test_instances_created_total",
			Help: "Total number of test plan instances created",
		},
	)

	// Promotion metrics
	ProposalsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "releasemgr_promotion_proposals_total",
			Help: "Total number of promotion proposals emitted",
		},
	)

	ApprovalsRequired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "releasemgr_manual_approvals_required_total",
			Help: "Total number of promotions requiring manual approval",
		},
	)

	PromotionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "releasemgr_promotions_total",
			Help: "Total number of charm promotions executed",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(TracksProcessed)
	prometheus.MustRegister(VerdictsTotal)
	prometheus.MustRegister(TrackReconcileDuration)
	prometheus.MustRegister(InstancesCreated)
	prometheus.MustRegister(ProposalsTotal)
	prometheus.MustRegister(ApprovalsRequired)
	prometheus.MustRegister(PromotionsTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
