/*
Package metrics exports Prometheus collectors for releasemgr runs.

The collectors cover both reconciliation engines: tracks processed and their
verdicts, per-track reconcile duration, test plan instances created on the
test platform, and promotion proposals, approvals, and executed promotions.

Runs are batch-shaped, so the promhttp handler is only served when the CLI
is started with --metrics-addr; scraping mid-run shows the counters of the
run in flight.

Usage:

	timer := metrics.NewTimer()
	verdict := processor.ProcessTrack(track)
	timer.ObserveDuration(metrics.TrackReconcileDuration)
	metrics.VerdictsTotal.WithLabelValues(string(verdict)).Inc()
*/
package metrics
