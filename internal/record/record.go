package record

import "context"

// Table names of the six dataset relations.
const (
	BootLogsTable      = "boot_logs"
	ModuleEventsTable  = "module_events"
	ErrorCodesTable    = "error_codes"
	SystemCallsTable   = "system_calls"
	DeviceDriversTable = "device_drivers"
	MemoryEventsTable  = "memory_events"
)

// TableNames lists the dataset tables in generation order.
var TableNames = []string{
	BootLogsTable,
	ModuleEventsTable,
	ErrorCodesTable,
	SystemCallsTable,
	DeviceDriversTable,
	MemoryEventsTable,
}

var idColumns = map[string]string{
	BootLogsTable:      "log_id",
	ModuleEventsTable:  "event_id",
	ErrorCodesTable:    "error_id",
	SystemCallsTable:   "call_id",
	DeviceDriversTable: "driver_id",
	MemoryEventsTable:  "mem_id",
}

func IsTable(name string) bool {
	_, ok := idColumns[name]
	return ok
}

// IDColumn returns the primary key column of a dataset table, or "" for unknown tables.
func IDColumn(table string) string {
	return idColumns[table]
}

type Store interface {
	Save(ctx context.Context, tables Tables) error
	Load(ctx context.Context) (Tables, error)
	Counts(ctx context.Context) (map[string]int64, error)
}

// Timestamps are seconds since the Unix epoch.

type BootLogEntry struct {
	ID          int64   `db:"log_id" goqu:"skipinsert"`
	Timestamp   float64 `db:"timestamp"`
	Level       string  `db:"log_level"`
	Subsystem   string  `db:"subsystem"`
	Message     string  `db:"message"`
	BootSession int     `db:"boot_session"`
}

type ModuleEvent struct {
	ID          int64   `db:"event_id" goqu:"skipinsert"`
	Timestamp   float64 `db:"timestamp"`
	ModuleName  string  `db:"module_name"`
	Action      string  `db:"action"`
	Status      string  `db:"status"`
	LoadAddress string  `db:"load_address"`
	BootSession int     `db:"boot_session"`
}

type ErrorRecord struct {
	ID             int64   `db:"error_id" goqu:"skipinsert"`
	Timestamp      float64 `db:"timestamp"`
	ErrorCode      string  `db:"error_code"`
	Severity       string  `db:"severity"`
	Subsystem      string  `db:"subsystem"`
	AffectedModule string  `db:"affected_module"`
	Description    string  `db:"description"`
}

type SyscallRecord struct {
	ID           int64   `db:"call_id" goqu:"skipinsert"`
	Timestamp    float64 `db:"timestamp"`
	SyscallName  string  `db:"syscall_name"`
	ReturnCode   int     `db:"return_code"`
	CallerModule string  `db:"caller_module"`
	ProcessName  string  `db:"process_name"`
}

func (s SyscallRecord) Failed() bool {
	return s.ReturnCode < 0
}

type DriverInitRecord struct {
	ID           int64   `db:"driver_id" goqu:"skipinsert"`
	Timestamp    float64 `db:"timestamp"`
	DriverName   string  `db:"driver_name"`
	DeviceID     string  `db:"device_id"`
	InitStatus   string  `db:"initialization_status"`
	ParentModule string  `db:"parent_module"`
}

type MemoryEvent struct {
	ID                int64   `db:"mem_id" goqu:"skipinsert"`
	Timestamp         float64 `db:"timestamp"`
	EventType         string  `db:"event_type"`
	AllocatedBytes    int64   `db:"allocated_bytes"`
	RequestingModule  string  `db:"requesting_module"`
	AllocationSuccess bool    `db:"allocation_success"`
}

// Tables bundles one slice per relation, each ordered by timestamp.
type Tables struct {
	BootLogs     []BootLogEntry
	ModuleEvents []ModuleEvent
	ErrorRecords []ErrorRecord
	Syscalls     []SyscallRecord
	DriverInits  []DriverInitRecord
	MemoryEvents []MemoryEvent
}

func (t Tables) Counts() map[string]int64 {
	return map[string]int64{
		BootLogsTable:      int64(len(t.BootLogs)),
		ModuleEventsTable:  int64(len(t.ModuleEvents)),
		ErrorCodesTable:    int64(len(t.ErrorRecords)),
		SystemCallsTable:   int64(len(t.Syscalls)),
		DeviceDriversTable: int64(len(t.DriverInits)),
		MemoryEventsTable:  int64(len(t.MemoryEvents)),
	}
}

func (t *Tables) Append(other Tables) {
	t.BootLogs = append(t.BootLogs, other.BootLogs...)
	t.ModuleEvents = append(t.ModuleEvents, other.ModuleEvents...)
	t.ErrorRecords = append(t.ErrorRecords, other.ErrorRecords...)
	t.Syscalls = append(t.Syscalls, other.Syscalls...)
	t.DriverInits = append(t.DriverInits, other.DriverInits...)
	t.MemoryEvents = append(t.MemoryEvents, other.MemoryEvents...)
}
