package generator

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"kernel-module-detective/internal/record"
)

var baselineReturnCodes = []int{-1, -2, -11, -22}

func chance(f *gofakeit.Faker, p float64) bool {
	return f.Float64Range(0, 1) < p
}

func bootMessages(subsystem string) []string {
	return []string{
		fmt.Sprintf("Initializing %s subsystem", subsystem),
		fmt.Sprintf("%s device detected", strings.ToUpper(subsystem)),
		fmt.Sprintf("Loading %s configuration", subsystem),
		fmt.Sprintf("%s ready", subsystem),
		fmt.Sprintf("Processing %s requests", subsystem),
	}
}

func baselineBootLog(f *gofakeit.Faker, p Params, session int, ts float64) record.BootLogEntry {
	level := f.RandomString(record.LogLevels)
	if chance(f, p.ForcedInfoRate) {
		level = record.LevelInfo
	}
	subsystem := f.RandomString(record.Subsystems)
	return record.BootLogEntry{
		Timestamp:   ts,
		Level:       level,
		Subsystem:   subsystem,
		Message:     f.RandomString(bootMessages(subsystem)),
		BootSession: session,
	}
}

func baselineModuleEvent(f *gofakeit.Faker, p Params, session int, ts float64) record.ModuleEvent {
	status := record.StatusSuccess
	if chance(f, p.BaselineLoadFailure) {
		status = record.StatusFailed
	}
	return record.ModuleEvent{
		Timestamp:   ts,
		ModuleName:  f.RandomString(p.Modules()),
		Action:      f.RandomString(record.Actions),
		Status:      status,
		LoadAddress: fmt.Sprintf("0x%016x", f.Uint64()),
		BootSession: session,
	}
}

func baselineErrorRecord(f *gofakeit.Faker, p Params, ts float64) record.ErrorRecord {
	return record.ErrorRecord{
		Timestamp:      ts,
		ErrorCode:      fmt.Sprintf("ERR_%d", f.Number(1000, 9999)),
		Severity:       f.RandomString(record.Severities),
		Subsystem:      f.RandomString(record.Subsystems),
		AffectedModule: f.RandomString(p.Modules()),
		Description:    f.RandomString(record.ErrorDescriptions),
	}
}

func baselineSyscall(f *gofakeit.Faker, p Params, ts float64) record.SyscallRecord {
	returnCode := 0
	if chance(f, p.BaselineSyscallFailure) {
		returnCode = f.RandomInt(baselineReturnCodes)
	}
	return record.SyscallRecord{
		Timestamp:    ts,
		SyscallName:  f.RandomString(record.Syscalls),
		ReturnCode:   returnCode,
		CallerModule: f.RandomString(p.Modules()),
		ProcessName:  f.RandomString(record.Processes),
	}
}

func baselineDriverInit(f *gofakeit.Faker, p Params, ts float64) record.DriverInitRecord {
	status := record.StatusSuccess
	if chance(f, p.BaselineDriverFailure) {
		status = record.StatusFailed
	}
	return record.DriverInitRecord{
		Timestamp:    ts,
		DriverName:   f.RandomString(record.Drivers),
		DeviceID:     fmt.Sprintf("%d:%d", f.Number(1000, 9999), f.Number(1000, 9999)),
		InitStatus:   status,
		ParentModule: f.RandomString(p.Modules()),
	}
}

func baselineMemoryEvent(f *gofakeit.Faker, p Params, ts float64) record.MemoryEvent {
	return record.MemoryEvent{
		Timestamp:         ts,
		EventType:         f.RandomString(record.MemoryTypes),
		AllocatedBytes:    int64(f.Number(1024, 1048576)),
		RequestingModule:  f.RandomString(p.Modules()),
		AllocationSuccess: !chance(f, p.BaselineMemoryFailure),
	}
}
