package generator

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"kernel-module-detective/internal/record"
)

// Session holds the rows generated for one boot session.
type Session struct {
	Index int
	record.Tables
}

type Dataset struct {
	// Seed is the effective master seed; regenerating with it reproduces the dataset.
	Seed         uint64
	FaultyModule string
	Sessions     []Session
}

// Tables flattens the sessions into one bundle, each table in timestamp order.
func (d Dataset) Tables() record.Tables {
	var t record.Tables
	for _, s := range d.Sessions {
		t.Append(s.Tables)
	}
	return t
}

type Generator struct {
	params Params
}

func NewGenerator(params Params) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Generator{params: params}, nil
}

func (g *Generator) Params() Params {
	return g.params
}

// Generate builds every (session, table) pair concurrently. Each pair draws from its own
// faker so the result depends only on the master seed.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	p := g.params
	seed := p.Seed
	if seed == 0 {
		seed = gofakeit.New(0).Uint64()
	}
	if seed == 0 {
		seed = 1
	}

	sessions := make([]Session, p.Sessions)
	eg, ctx := errgroup.WithContext(ctx)
	for i := range sessions {
		s := &sessions[i]
		s.Index = i + 1
		jobs := map[string]func(f *gofakeit.Faker){
			record.BootLogsTable:      func(f *gofakeit.Faker) { s.BootLogs = p.bootLogs(f, s.Index) },
			record.ModuleEventsTable:  func(f *gofakeit.Faker) { s.ModuleEvents = p.moduleEvents(f, s.Index) },
			record.ErrorCodesTable:    func(f *gofakeit.Faker) { s.ErrorRecords = p.errorRecords(f, s.Index) },
			record.SystemCallsTable:   func(f *gofakeit.Faker) { s.Syscalls = p.syscalls(f, s.Index) },
			record.DeviceDriversTable: func(f *gofakeit.Faker) { s.DriverInits = p.driverInits(f, s.Index) },
			record.MemoryEventsTable:  func(f *gofakeit.Faker) { s.MemoryEvents = p.memoryEvents(f, s.Index) },
		}
		for table, job := range jobs {
			faker := gofakeit.New(tableSeed(seed, s.Index, table))
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				job(faker)
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return Dataset{}, err
	}

	return Dataset{Seed: seed, FaultyModule: p.FaultyModule, Sessions: sessions}, nil
}

func tableSeed(master uint64, session int, table string) uint64 {
	seed := xxhash.Sum64String(fmt.Sprintf("%d/%d/%s", master, session, table))
	if seed == 0 {
		// gofakeit treats 0 as a request for a random seed.
		return 1
	}
	return seed
}

func (p Params) bootLogs(f *gofakeit.Faker, session int) []record.BootLogEntry {
	times := p.fixedTimes(session, p.Rows.BootLogs, bootLogStep)
	rows := make([]record.BootLogEntry, len(times))
	for i, ts := range times {
		rows[i] = overlayBootLog(f, p, baselineBootLog(f, p, session, ts))
	}
	return rows
}

func (p Params) moduleEvents(f *gofakeit.Faker, session int) []record.ModuleEvent {
	times := p.fixedTimes(session, p.Rows.ModuleEvents, moduleEventStep)
	rows := make([]record.ModuleEvent, len(times))
	for i, ts := range times {
		rows[i] = overlayModuleEvent(f, p, baselineModuleEvent(f, p, session, ts))
	}
	return rows
}

func (p Params) errorRecords(f *gofakeit.Faker, session int) []record.ErrorRecord {
	times := p.randomTimes(f, session, p.Rows.ErrorRecords)
	rows := make([]record.ErrorRecord, len(times))
	for i, ts := range times {
		rows[i] = overlayErrorRecord(f, p, session, baselineErrorRecord(f, p, ts))
	}
	return rows
}

func (p Params) syscalls(f *gofakeit.Faker, session int) []record.SyscallRecord {
	times := p.randomTimes(f, session, p.Rows.Syscalls)
	rows := make([]record.SyscallRecord, len(times))
	for i, ts := range times {
		rows[i] = overlaySyscall(f, p, session, baselineSyscall(f, p, ts))
	}
	return rows
}

func (p Params) driverInits(f *gofakeit.Faker, session int) []record.DriverInitRecord {
	times := p.fixedTimes(session, p.Rows.DriverInits, driverInitStep)
	rows := make([]record.DriverInitRecord, len(times))
	for i, ts := range times {
		rows[i] = overlayDriverInit(f, p, session, baselineDriverInit(f, p, ts))
	}
	return rows
}

func (p Params) memoryEvents(f *gofakeit.Faker, session int) []record.MemoryEvent {
	times := p.randomTimes(f, session, p.Rows.MemoryEvents)
	rows := make([]record.MemoryEvent, len(times))
	for i, ts := range times {
		rows[i] = overlayMemoryEvent(f, p, session, baselineMemoryEvent(f, p, ts))
	}
	return rows
}
