package analyser

// QueryID identifies one query of the catalogue. The zero value is not a query.
type QueryID int

const (
	TableDiscovery QueryID = iota + 1
	SessionTriage
	FailureRanking
	CrossTableCorrelation
	TripleCorrelation
	TemporalCorrelation
	MemoryFailureRate
	NetworkFault
	UnifiedTimeline
	CompositeScore
)

// Catalogue lists every query in the order an investigation runs them.
var Catalogue = []QueryID{
	TableDiscovery,
	SessionTriage,
	FailureRanking,
	CrossTableCorrelation,
	TripleCorrelation,
	TemporalCorrelation,
	MemoryFailureRate,
	NetworkFault,
	UnifiedTimeline,
	CompositeScore,
}

func (id QueryID) String() string {
	switch id {
	case TableDiscovery:
		return "table_discovery"
	case SessionTriage:
		return "boot_errors"
	case FailureRanking:
		return "failed_modules"
	case CrossTableCorrelation:
		return "ct_investigation"
	case TripleCorrelation:
		return "triple_threat"
	case TemporalCorrelation:
		return "temporal_analysis"
	case MemoryFailureRate:
		return "memory_anomaly"
	case NetworkFault:
		return "network_stack"
	case UnifiedTimeline:
		return "unified_timeline"
	case CompositeScore:
		return "smoking_gun"
	}
	return "unknown"
}

func (id QueryID) Title() string {
	switch id {
	case TableDiscovery:
		return "Table discovery"
	case SessionTriage:
		return "Boot sessions with ERROR or CRIT log entries"
	case FailureRanking:
		return "Failed module loads by module"
	case CrossTableCorrelation:
		return "Modules with failed loads and HIGH/CRITICAL errors"
	case TripleCorrelation:
		return "Failed loads, critical errors and failed allocations"
	case TemporalCorrelation:
		return "Syscall failures close to a module load in late sessions"
	case MemoryFailureRate:
		return "Memory allocation failure rate"
	case NetworkFault:
		return "Modules behind failed network driver initialisation"
	case UnifiedTimeline:
		return "Unified timeline"
	case CompositeScore:
		return "Danger score"
	}
	return "Unknown query"
}

// Lookup resolves a catalogue name; the second result is false for names outside the catalogue.
func Lookup(name string) (QueryID, bool) {
	for _, id := range Catalogue {
		if id.String() == name {
			return id, true
		}
	}
	return 0, false
}
