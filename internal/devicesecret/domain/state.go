package domain

// State is the lifecycle state of one installation.
type State int

const (
	// StateNoKey means the master key does not exist yet.
	StateNoKey State = iota
	// StateKeyReady means the master key exists but no wrapped secret is stored.
	StateKeyReady
	// StateProvisioned means both the master key and a wrapped secret exist.
	StateProvisioned
)

// String returns the state name used in logs and CLI output.
func (s State) String() string {
	switch s {
	case StateNoKey:
		return "no-key"
	case StateKeyReady:
		return "key-ready"
	case StateProvisioned:
		return "provisioned"
	default:
		return "unknown"
	}
}
