package model

// MetricUnset marks an integer metric that has not been computed yet.
const MetricUnset = -1

// Metrics holds the per-artifact numbers written by the metrics pass and
// consumed by the sorter and the layouter.
type Metrics struct {
	// LinesOfCode is the artifact's size. For a non-leaf it equals the sum
	// of its children's LinesOfCode.
	LinesOfCode int

	// ComponentRank is the index of the artifact's weakly-connected
	// component within its scope's graph, 0 for the component with the
	// greatest total LinesOfCode. MetricUnset until computed.
	ComponentRank int

	// SCCIndexTopologicallySorted is the topological position of the
	// artifact's strongly-connected component within its weakly-connected
	// component. MetricUnset until computed.
	SCCIndexTopologicallySorted int

	// IsInACycle reports whether the artifact's SCC has more than one
	// member.
	IsInACycle bool
}

func newMetrics() Metrics {
	return Metrics{
		ComponentRank:               MetricUnset,
		SCCIndexTopologicallySorted: MetricUnset,
	}
}

// HasComponentRank reports whether ComponentRank has been computed.
func (m Metrics) HasComponentRank() bool { return m.ComponentRank != MetricUnset }

// HasSCCIndex reports whether SCCIndexTopologicallySorted has been computed.
func (m Metrics) HasSCCIndex() bool { return m.SCCIndexTopologicallySorted != MetricUnset }
