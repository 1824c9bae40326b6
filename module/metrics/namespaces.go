package metrics

// Prometheus metric namespaces
const (
	namespaceRelay = "drand_relay"
)

// Relay subsystems
const (
	subsystemRounds    = "rounds"
	subsystemBroadcast = "broadcast"
	subsystemAccount   = "account"
)
