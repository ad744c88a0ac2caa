// Package liveness implements vigil's background reaper.
//
// It periodically scans for sessions and machines that exceeded their idle
// or lifetime window, flips them from active to inactive exactly once, and
// publishes an ephemeral presence event for every transition it performed.
//
// Concurrent reapers and unrelated writers (activity heartbeats, explicit
// sign-outs) may race with a scan. The only synchronization mechanism is
// the store's conditional close: an update that takes effect only while
// the row is still active and reports whether it did. A reaper emits an
// event iff its own conditional close took effect, which makes emission
// at-most-once per actual deactivation.
//
// Transport (HTTP/WS) integration is intentionally out of scope here.
package liveness
