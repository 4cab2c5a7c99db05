package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/livepaste/livepaste/pkg/metrics"
)

// roomMetrics is the Prometheus implementation of metrics.RoomMetrics.
type roomMetrics struct {
	filesUpserted      *prometheus.CounterVec
	filesDeleted       *prometheus.CounterVec
	operations         prometheus.Counter
	conflicts          prometheus.Counter
	snapshots          prometheus.Counter
	snapshotPurged     prometheus.Counter
	changesetsResolved *prometheus.CounterVec
	roomsDeleted       *prometheus.CounterVec
	tombstonesPruned   prometheus.Counter
	syncSessions       prometheus.Gauge
}

func newRoomMetrics() metrics.RoomMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &roomMetrics{
		filesUpserted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "livepaste_files_upserted_total",
				Help: "Total number of files written by source",
			},
			[]string{"source"}, // "api", "sync", "changeset"
		),
		filesDeleted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "livepaste_files_deleted_total",
				Help: "Total number of files tombstoned by source",
			},
			[]string{"source"}, // "api", "sync"
		),
		operations: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "livepaste_operations_total",
				Help: "Total number of accepted operation-log submissions",
			},
		),
		conflicts: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "livepaste_operation_conflicts_total",
				Help: "Total number of operation submissions rejected with a conflict",
			},
		),
		snapshots: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "livepaste_snapshots_total",
				Help: "Total number of snapshot compactions",
			},
		),
		snapshotPurged: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "livepaste_snapshot_operations_purged_total",
				Help: "Total number of operations purged by snapshot compaction",
			},
		),
		changesetsResolved: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "livepaste_changesets_resolved_total",
				Help: "Total number of changeset resolutions by outcome",
			},
			[]string{"outcome"}, // "accepted", "rejected", "partial"
		),
		roomsDeleted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "livepaste_rooms_deleted_total",
				Help: "Total number of rooms removed by reason",
			},
			[]string{"reason"}, // "expired", "kill_switch"
		),
		tombstonesPruned: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "livepaste_tombstones_pruned_total",
				Help: "Total number of deletion tombstones dropped by the retention sweep",
			},
		),
		syncSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "livepaste_sync_sessions",
				Help: "Number of live chunked upload sessions",
			},
		),
	}
}

func (m *roomMetrics) ObserveFilesUpserted(source string, count int) {
	m.filesUpserted.WithLabelValues(source).Add(float64(count))
}

func (m *roomMetrics) ObserveFilesDeleted(source string, count int) {
	m.filesDeleted.WithLabelValues(source).Add(float64(count))
}

func (m *roomMetrics) ObserveOperation() {
	m.operations.Inc()
}

func (m *roomMetrics) ObserveConflict() {
	m.conflicts.Inc()
}

func (m *roomMetrics) ObserveSnapshot(purged int) {
	m.snapshots.Inc()
	if purged > 0 {
		m.snapshotPurged.Add(float64(purged))
	}
}

func (m *roomMetrics) ObserveChangesetResolved(outcome string) {
	m.changesetsResolved.WithLabelValues(outcome).Inc()
}

func (m *roomMetrics) ObserveRoomsDeleted(reason string, count int) {
	m.roomsDeleted.WithLabelValues(reason).Add(float64(count))
}

func (m *roomMetrics) ObserveTombstonesPruned(count int) {
	m.tombstonesPruned.Add(float64(count))
}

func (m *roomMetrics) SetSyncSessions(n int) {
	m.syncSessions.Set(float64(n))
}
