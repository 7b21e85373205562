package generator

import (
	"github.com/pkg/errors"

	"kernel-module-detective/internal/record"
)

// Rows is the number of rows generated per session for each table.
type Rows struct {
	BootLogs     int
	ModuleEvents int
	ErrorRecords int
	Syscalls     int
	DriverInits  int
	MemoryEvents int
}

func (r Rows) Scale(factor int) Rows {
	return Rows{
		BootLogs:     r.BootLogs * factor,
		ModuleEvents: r.ModuleEvents * factor,
		ErrorRecords: r.ErrorRecords * factor,
		Syscalls:     r.Syscalls * factor,
		DriverInits:  r.DriverInits * factor,
		MemoryEvents: r.MemoryEvents * factor,
	}
}

type Params struct {
	// Seed 0 draws a random master seed; the effective seed is reported on the Dataset.
	Seed               uint64
	Sessions           int
	AnomalyFromSession int
	// SessionSpacing is the offset in seconds between consecutive session starts.
	SessionSpacing float64
	Rows           Rows
	FaultyModule   string

	BaselineLoadFailure    float64
	BaselineSyscallFailure float64
	BaselineDriverFailure  float64
	BaselineMemoryFailure  float64
	ForcedInfoRate         float64

	LoadFailureRate float64
	// SeverityBias is the chance an injected error is redrawn as HIGH or CRITICAL;
	// CriticalBias is the chance such a redraw lands on CRITICAL.
	SeverityBias           float64
	CriticalBias           float64
	SyscallFailureRate     float64
	NetworkInitFailureRate float64
	MemoryFailureRate      float64
	InflateAllocations     bool
	NetworkNoiseRate       float64
}

func DefaultRows() Rows {
	return Rows{
		BootLogs:     200,
		ModuleEvents: 50,
		ErrorRecords: 30,
		Syscalls:     40,
		DriverInits:  25,
		MemoryEvents: 35,
	}
}

func DefaultParams() Params {
	return Params{
		Sessions:           3,
		AnomalyFromSession: 2,
		SessionSpacing:     3600,
		Rows:               DefaultRows(),
		FaultyModule:       record.DefaultFaultyModule,

		BaselineLoadFailure:    0.05,
		BaselineSyscallFailure: 0.2,
		BaselineDriverFailure:  0.1,
		BaselineMemoryFailure:  0.15,
		ForcedInfoRate:         0.3,

		LoadFailureRate:        0.4,
		SeverityBias:           0.9,
		CriticalBias:           0.8,
		SyscallFailureRate:     0.85,
		NetworkInitFailureRate: 0.9,
		MemoryFailureRate:      0.75,
		InflateAllocations:     true,
		NetworkNoiseRate:       0.05,
	}
}

func (p Params) Validate() error {
	if p.Sessions < 1 {
		return errors.Errorf("sessions must be at least 1, got %d", p.Sessions)
	}
	if p.AnomalyFromSession < 1 {
		return errors.Errorf("anomaly start session must be at least 1, got %d", p.AnomalyFromSession)
	}
	if p.SessionSpacing <= 0 {
		return errors.Errorf("session spacing must be positive, got %v", p.SessionSpacing)
	}
	counts := map[string]int{
		record.BootLogsTable:      p.Rows.BootLogs,
		record.ModuleEventsTable:  p.Rows.ModuleEvents,
		record.ErrorCodesTable:    p.Rows.ErrorRecords,
		record.SystemCallsTable:   p.Rows.Syscalls,
		record.DeviceDriversTable: p.Rows.DriverInits,
		record.MemoryEventsTable:  p.Rows.MemoryEvents,
	}
	for table, n := range counts {
		if n < 0 {
			return errors.Errorf("row count for %s must not be negative, got %d", table, n)
		}
	}
	if p.FaultyModule == "" {
		return errors.New("faulty module must be set")
	}
	if record.IsDecoy(p.FaultyModule) {
		return errors.Errorf("faulty module %q is a decoy", p.FaultyModule)
	}

	probabilities := map[string]float64{
		"baseline load failure":    p.BaselineLoadFailure,
		"baseline syscall failure": p.BaselineSyscallFailure,
		"baseline driver failure":  p.BaselineDriverFailure,
		"baseline memory failure":  p.BaselineMemoryFailure,
		"forced info rate":         p.ForcedInfoRate,
		"load failure rate":        p.LoadFailureRate,
		"severity bias":            p.SeverityBias,
		"critical bias":            p.CriticalBias,
		"syscall failure rate":     p.SyscallFailureRate,
		"network init failure":     p.NetworkInitFailureRate,
		"memory failure rate":      p.MemoryFailureRate,
		"network noise rate":       p.NetworkNoiseRate,
	}
	for name, v := range probabilities {
		if v < 0 || v > 1 {
			return errors.Errorf("%s must be within [0, 1], got %v", name, v)
		}
	}
	return nil
}

// Injected reports whether rows of module in session carry the anomaly signal.
func (p Params) Injected(module string, session int) bool {
	return module == p.FaultyModule && session >= p.AnomalyFromSession
}

// Modules is the population rows draw their module from.
func (p Params) Modules() []string {
	return record.AllModules(p.FaultyModule)
}
