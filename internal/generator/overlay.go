package generator

import (
	"github.com/brianvoe/gofakeit/v7"

	"kernel-module-detective/internal/record"
)

// Overlays rewrite a baseline row when it belongs to the faulty module in a late session.
// Each table flips its own biased coin, so no single table gives the culprit away.

var (
	injectedReturnCodes  = []int{-1, -11, -22}
	injectedDescriptions = append(append([]string{}, record.ErrorDescriptions...), record.AnomalyDescriptions...)
)

const (
	networkNoiseMessage = "Unusual activity in network stack"
	inflatedMinBytes    = 10 * 1024 * 1024
	inflatedMaxBytes    = 100 * 1024 * 1024
)

// overlayBootLog adds noise to late-session network logs; boot logs carry no module.
// A noisy log is raised to WARN and its message redrawn with the noise message as one more candidate.
func overlayBootLog(f *gofakeit.Faker, p Params, e record.BootLogEntry) record.BootLogEntry {
	if e.BootSession < p.AnomalyFromSession || e.Subsystem != record.SubsystemNetwork {
		return e
	}
	if chance(f, p.NetworkNoiseRate) {
		e.Level = record.LevelWarn
		e.Message = f.RandomString(append(bootMessages(e.Subsystem), networkNoiseMessage))
	}
	return e
}

func overlayModuleEvent(f *gofakeit.Faker, p Params, e record.ModuleEvent) record.ModuleEvent {
	if !p.Injected(e.ModuleName, e.BootSession) {
		return e
	}
	e.Status = record.StatusSuccess
	if chance(f, p.LoadFailureRate) {
		e.Status = record.StatusFailed
	}
	return e
}

func overlayErrorRecord(f *gofakeit.Faker, p Params, session int, e record.ErrorRecord) record.ErrorRecord {
	if !p.Injected(e.AffectedModule, session) {
		return e
	}
	if chance(f, p.SeverityBias) {
		e.Severity = record.SeverityHigh
		if chance(f, p.CriticalBias) {
			e.Severity = record.SeverityCritical
		}
	}
	e.Description = f.RandomString(injectedDescriptions)
	return e
}

func overlaySyscall(f *gofakeit.Faker, p Params, session int, s record.SyscallRecord) record.SyscallRecord {
	if !p.Injected(s.CallerModule, session) {
		return s
	}
	if chance(f, p.SyscallFailureRate) {
		s.ReturnCode = f.RandomInt(injectedReturnCodes)
	}
	return s
}

func overlayDriverInit(f *gofakeit.Faker, p Params, session int, d record.DriverInitRecord) record.DriverInitRecord {
	if !p.Injected(d.ParentModule, session) || !record.IsNetworkDriver(d.DriverName) {
		return d
	}
	if chance(f, p.NetworkInitFailureRate) {
		d.InitStatus = record.StatusFailed
	}
	return d
}

func overlayMemoryEvent(f *gofakeit.Faker, p Params, session int, m record.MemoryEvent) record.MemoryEvent {
	if !p.Injected(m.RequestingModule, session) {
		return m
	}
	m.AllocationSuccess = !chance(f, p.MemoryFailureRate)
	if p.InflateAllocations {
		m.AllocatedBytes = int64(f.Number(inflatedMinBytes, inflatedMaxBytes))
	}
	return m
}
