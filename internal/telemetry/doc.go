// Package telemetry records how long device operations take and estimates
// how long the next one will.
//
// Every Set, Trigger, and Stop dispatched through a device can be timed
// and persisted as an operation record. The Estimator averages recent
// records for an (object, action) pair to predict upcoming operation
// durations, which schedulers use to budget scans.
//
// # Recorders
//
//	SQLiteRecorder   durable local history (operation_history table)
//	Noop             discards everything, for when telemetry is disabled
//	Fanout           composite that forwards to several recorders
//
// Records are written on the operation's completion path and must never
// fail the operation itself; callers log recorder errors and move on.
package telemetry
