package analyser

import (
	"kernel-module-detective/internal/db"
)

type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
)

type Column struct {
	Name string
	Kind Kind
}

// Definition is a catalogue query bound to a dialect and a set of parameters.
// SQL uses ? placeholders; Args follow their order in the text.
type Definition struct {
	ID      QueryID
	Columns []Column
	SQL     string
	Args    []any
}

func textCol(name string) Column  { return Column{Name: name, Kind: KindText} }
func intCol(name string) Column   { return Column{Name: name, Kind: KindInt} }
func floatCol(name string) Column { return Column{Name: name, Kind: KindFloat} }

// Expressions shared by several queries. Booleans are tested directly so the text is
// valid for both sqlite integers and PostgreSQL booleans.
const (
	failedAllocation = `CASE WHEN allocation_success THEN 0 ELSE 1 END`
	failurePct       = `CAST(SUM(` + failedAllocation + `) AS DOUBLE PRECISION) * 100 / COUNT(*)`
)

const sessionTriageSQL = `SELECT DISTINCT boot_session
FROM boot_logs
WHERE log_level IN ('ERROR', 'CRIT')
ORDER BY boot_session`

const failureRankingSQL = `SELECT module_name, COUNT(*) AS failure_count
FROM module_events
WHERE status = 'FAILED'
GROUP BY module_name
ORDER BY failure_count DESC, module_name
LIMIT ?`

const crossTableSQL = `SELECT DISTINCT me.module_name
FROM module_events AS me
INNER JOIN error_codes AS ec ON me.module_name = ec.affected_module
WHERE me.status = 'FAILED'
  AND ec.severity IN ('HIGH', 'CRITICAL')
ORDER BY me.module_name`

const tripleSQL = `SELECT me.module_name,
  COUNT(DISTINCT me.event_id) AS failed_loads,
  COUNT(DISTINCT ec.error_id) AS critical_errors,
  COUNT(DISTINCT mem.mem_id) AS memory_failures
FROM module_events AS me
INNER JOIN error_codes AS ec
  ON me.module_name = ec.affected_module AND ec.severity = 'CRITICAL'
INNER JOIN memory_events AS mem
  ON me.module_name = mem.requesting_module AND NOT mem.allocation_success
WHERE me.status = 'FAILED'
GROUP BY me.module_name
ORDER BY COUNT(DISTINCT me.event_id) + COUNT(DISTINCT ec.error_id) + COUNT(DISTINCT mem.mem_id) DESC, me.module_name`

const temporalSQL = `SELECT me.module_name, COUNT(DISTINCT sc.call_id) AS correlated_failures
FROM module_events AS me
INNER JOIN system_calls AS sc ON me.module_name = sc.caller_module
WHERE me.boot_session >= ?
  AND me.action = 'LOAD'
  AND sc.return_code < 0
  AND ABS(me.timestamp - sc.timestamp) < ?
GROUP BY me.module_name
ORDER BY correlated_failures DESC, me.module_name`

const memorySQL = `SELECT requesting_module,
  COUNT(*) AS total_requests,
  SUM(` + failedAllocation + `) AS failures,
  ` + failurePct + ` AS failure_rate_pct
FROM memory_events
GROUP BY requesting_module
HAVING COUNT(*) >= ?
  AND ` + failurePct + ` > ?
ORDER BY failure_rate_pct DESC, requesting_module`

const networkSQL = `SELECT dd.parent_module, COUNT(DISTINCT dd.driver_id) AS failed_network_inits
FROM device_drivers AS dd
INNER JOIN error_codes AS ec ON dd.parent_module = ec.affected_module
WHERE dd.driver_name IN ('eth0', 'wlan0')
  AND dd.initialization_status = 'FAILED'
  AND ec.subsystem = 'network'
GROUP BY dd.parent_module
HAVING COUNT(DISTINCT dd.driver_id) >= ?
ORDER BY failed_network_inits DESC, dd.parent_module`

const timelineSQL = `SELECT timestamp, 'MODULE_EVENT' AS event_type, status AS detail, boot_session
FROM module_events WHERE module_name = ?
UNION ALL
SELECT timestamp, 'ERROR_CODE', severity, NULL
FROM error_codes WHERE affected_module = ?
UNION ALL
SELECT timestamp, 'MEMORY_EVENT', CASE WHEN allocation_success THEN 'SUCCESS' ELSE 'FAILED' END, NULL
FROM memory_events WHERE requesting_module = ?
UNION ALL
SELECT timestamp, 'SYSTEM_CALL', CASE WHEN return_code < 0 THEN 'FAILED' ELSE 'SUCCESS' END, NULL
FROM system_calls WHERE caller_module = ?
UNION ALL
SELECT timestamp, 'DRIVER_INIT', initialization_status, NULL
FROM device_drivers WHERE parent_module = ?
ORDER BY timestamp, event_type
LIMIT ?`

const compositeSQL = `WITH
failed_loads AS (
  SELECT module_name, COUNT(*) AS failed_load_count
  FROM module_events
  WHERE status = 'FAILED'
  GROUP BY module_name
),
critical_errors AS (
  SELECT affected_module, COUNT(*) AS critical_error_count
  FROM error_codes
  WHERE severity = 'CRITICAL'
  GROUP BY affected_module
),
memory_stats AS (
  SELECT requesting_module, ` + failurePct + ` AS mem_failure_rate
  FROM memory_events
  GROUP BY requesting_module
),
network_failures AS (
  SELECT parent_module, COUNT(*) AS net_init_failures
  FROM device_drivers
  WHERE initialization_status = 'FAILED'
    AND driver_name IN ('eth0', 'wlan0')
  GROUP BY parent_module
),
syscall_failures AS (
  SELECT caller_module, COUNT(*) AS syscall_fail_count
  FROM system_calls
  WHERE return_code < 0
  GROUP BY caller_module
)
SELECT fl.module_name,
  fl.failed_load_count AS failed_loads,
  COALESCE(ce.critical_error_count, 0) AS critical_errors,
  COALESCE(ms.mem_failure_rate, 0) AS mem_failure_pct,
  COALESCE(nf.net_init_failures, 0) AS network_failures,
  COALESCE(sf.syscall_fail_count, 0) AS syscall_failures,
  fl.failed_load_count * ?
    + COALESCE(ce.critical_error_count, 0) * ?
    + COALESCE(nf.net_init_failures, 0) * ?
    + COALESCE(sf.syscall_fail_count, 0) * ? AS danger_score
FROM failed_loads AS fl
LEFT JOIN critical_errors AS ce ON fl.module_name = ce.affected_module
LEFT JOIN memory_stats AS ms ON fl.module_name = ms.requesting_module
LEFT JOIN network_failures AS nf ON fl.module_name = nf.parent_module
LEFT JOIN syscall_failures AS sf ON fl.module_name = sf.caller_module
WHERE fl.failed_load_count >= ?
  AND COALESCE(ce.critical_error_count, 0) >= ?
  AND COALESCE(ms.mem_failure_rate, 0) > ?
ORDER BY danger_score DESC, fl.module_name`

// Define returns the definition of id for the given dialect. It reports false for ids outside
// the catalogue.
func Define(id QueryID, dialect db.Dialect, p Params) (Definition, bool) {
	d := Definition{ID: id}
	switch id {
	case TableDiscovery:
		d.Columns = []Column{textCol("name")}
		d.SQL = db.TablesQuery(dialect)
	case SessionTriage:
		d.Columns = []Column{intCol("boot_session")}
		d.SQL = sessionTriageSQL
	case FailureRanking:
		d.Columns = []Column{textCol("module_name"), intCol("failure_count")}
		d.SQL = failureRankingSQL
		d.Args = []any{p.RankingLimit}
	case CrossTableCorrelation:
		d.Columns = []Column{textCol("module_name")}
		d.SQL = crossTableSQL
	case TripleCorrelation:
		d.Columns = []Column{textCol("module_name"), intCol("failed_loads"), intCol("critical_errors"), intCol("memory_failures")}
		d.SQL = tripleSQL
	case TemporalCorrelation:
		d.Columns = []Column{textCol("module_name"), intCol("correlated_failures")}
		d.SQL = temporalSQL
		d.Args = []any{p.LateSessionFrom, p.TemporalWindow}
	case MemoryFailureRate:
		d.Columns = []Column{textCol("requesting_module"), intCol("total_requests"), intCol("failures"), floatCol("failure_rate_pct")}
		d.SQL = memorySQL
		d.Args = []any{p.MinMemoryRequests, p.MinMemoryFailurePct}
	case NetworkFault:
		d.Columns = []Column{textCol("parent_module"), intCol("failed_network_inits")}
		d.SQL = networkSQL
		d.Args = []any{p.MinNetworkFailures}
	case UnifiedTimeline:
		d.Columns = []Column{floatCol("timestamp"), textCol("event_type"), textCol("detail"), intCol("boot_session")}
		d.SQL = timelineSQL
		m := p.TimelineModule
		d.Args = []any{m, m, m, m, m, p.TimelineLimit}
	case CompositeScore:
		d.Columns = []Column{
			textCol("module_name"),
			intCol("failed_loads"),
			intCol("critical_errors"),
			floatCol("mem_failure_pct"),
			intCol("network_failures"),
			intCol("syscall_failures"),
			intCol("danger_score"),
		}
		d.SQL = compositeSQL
		w := p.Weights
		d.Args = []any{
			w.FailedLoads, w.CriticalErrors, w.NetworkFailures, w.SyscallFailures,
			p.MinFailedLoads, p.MinCriticalErrors, p.MinMemFailurePct,
		}
	default:
		return Definition{}, false
	}
	d.SQL = db.Rebind(dialect, d.SQL)
	return d, true
}
