package realtime

import "time"

// Security/performance limits for the presence feed.
const (
	// Max bytes per websocket frame read (hard limit).
	// The feed is push-only; inbound frames are control noise at best.
	maxFrameBytes = 4 << 10 // 4 KiB

	wsDefaultSendQueueSize = 256
	wsMinSendQueueSize     = 32

	wsDefaultWriteTimeout = 5 * time.Second
	wsCloseGrace          = 1 * time.Second

	wsMaxPingFailures = 3
)

const (
	// Heartbeat defaults (can be overridden by env in ws_gateway.go).
	heartbeatInterval = 25 * time.Second
	heartbeatTimeout  = 5 * time.Second
)
