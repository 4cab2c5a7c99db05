package metrics

// RoomMetrics records room-level measurements: writes, the operation
// log, changeset review, and retention.
//
// A nil RoomMetrics is valid and means metrics are disabled.
type RoomMetrics interface {
	// ObserveFilesUpserted counts files written, labelled by source:
	// "api", "sync", "changeset".
	ObserveFilesUpserted(source string, count int)

	// ObserveFilesDeleted counts files tombstoned, labelled by source:
	// "api", "sync".
	ObserveFilesDeleted(source string, count int)

	// ObserveOperation counts accepted operation-log submissions.
	ObserveOperation()

	// ObserveConflict counts submissions rejected with a conflict.
	ObserveConflict()

	// ObserveSnapshot counts snapshot compactions and the operations
	// they purged.
	ObserveSnapshot(purged int)

	// ObserveChangesetResolved counts changeset resolutions by outcome:
	// "accepted", "rejected", "partial".
	ObserveChangesetResolved(outcome string)

	// ObserveRoomsDeleted counts room removals by reason: "expired",
	// "kill_switch".
	ObserveRoomsDeleted(reason string, count int)

	// ObserveTombstonesPruned counts tombstones dropped by the sweep.
	ObserveTombstonesPruned(count int)

	// SetSyncSessions tracks the number of live chunked upload sessions.
	SetSyncSessions(n int)
}

// NewRoomMetrics creates a Prometheus-backed RoomMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewRoomMetrics() RoomMetrics {
	if !IsEnabled() || newPrometheusRoomMetrics == nil {
		return nil
	}
	return newPrometheusRoomMetrics()
}

// newPrometheusRoomMetrics is implemented in pkg/metrics/prometheus.
var newPrometheusRoomMetrics func() RoomMetrics

// RegisterRoomMetricsConstructor registers the Prometheus constructor.
// Called by pkg/metrics/prometheus during package initialization.
func RegisterRoomMetricsConstructor(constructor func() RoomMetrics) {
	newPrometheusRoomMetrics = constructor
}

// ObserveFilesUpserted records a file write batch on a possibly-nil
// instance.
func ObserveFilesUpserted(m RoomMetrics, source string, count int) {
	if m != nil {
		m.ObserveFilesUpserted(source, count)
	}
}

// ObserveFilesDeleted records tombstoned files on a possibly-nil
// instance.
func ObserveFilesDeleted(m RoomMetrics, source string, count int) {
	if m != nil {
		m.ObserveFilesDeleted(source, count)
	}
}

// ObserveRoomsDeleted records room removals on a possibly-nil instance.
func ObserveRoomsDeleted(m RoomMetrics, reason string, count int) {
	if m != nil {
		m.ObserveRoomsDeleted(reason, count)
	}
}

// ObserveTombstonesPruned records pruned tombstones on a possibly-nil
// instance.
func ObserveTombstonesPruned(m RoomMetrics, count int) {
	if m != nil {
		m.ObserveTombstonesPruned(count)
	}
}
