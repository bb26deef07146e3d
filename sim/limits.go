package sim

// Limits mirrors the teacher's ResourceLimits: hard caps that exist
// purely for DoS protection, checked before any unbounded append.
type Limits struct {
	MaxEntities          int
	MaxEntitiesPerClient int
	MaxFood              int
}

// DefaultLimits returns production-safe defaults, matching the operator
// configuration table in the spec (§6).
func DefaultLimits() Limits {
	return Limits{
		MaxEntities:          4096,
		MaxEntitiesPerClient: 5,
		MaxFood:              400,
	}
}
