package config

import (
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"kernel-module-detective/internal/analyser"
	"kernel-module-detective/internal/db"
	"kernel-module-detective/internal/env"
	"kernel-module-detective/internal/generator"
	"kernel-module-detective/internal/logging"
	"kernel-module-detective/internal/render"
)

type Config struct {
	Database   db.Config
	Log        logging.Config
	Generation generator.Params
	Query      analyser.Params
	Display    render.Config
}

// LoadDotEnv loads variables from the given files (default .env) into the process environment.
// Missing files are skipped and variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, "loading %s", f)
		}
	}
	return nil
}

// Default builds the configuration from built-in defaults overridden by environment variables.
func Default() Config {
	database := db.DefaultConfig()
	database.Driver = env.GetEnvString("DB_DRIVER", database.Driver)
	database.Path = env.GetEnvString("DB_PATH", database.Path)
	database.URL = env.GetEnvString("DB_URL", database.URL)
	database.Host = env.GetEnvString("DB_HOST", database.Host)
	database.Port = env.GetEnvInt("DB_PORT", database.Port)
	database.User = env.GetEnvString("DB_USER", database.User)
	database.Password = env.GetEnvString("DB_PASSWORD", database.Password)
	database.Name = env.GetEnvString("DB_NAME", database.Name)
	database.SSLMode = env.GetEnvString("DB_SSLMODE", database.SSLMode)

	logConfig := logging.DefaultConfig()
	logConfig.Level = env.GetEnvString("LOG_LEVEL", logConfig.Level)
	logConfig.Format = env.GetEnvString("LOG_FORMAT", logConfig.Format)

	generation := generator.DefaultParams()
	generation.Seed = env.GetEnvUint64("GENERATOR_SEED", generation.Seed)
	generation.Sessions = env.GetEnvInt("GENERATOR_SESSIONS", generation.Sessions)
	generation.FaultyModule = env.GetEnvString("GENERATOR_FAULTY_MODULE", generation.FaultyModule)

	query := analyser.DefaultParams()
	query.TimelineModule = env.GetEnvString("QUERY_TIMELINE_MODULE", query.TimelineModule)

	display := render.DefaultConfig()
	display.Width = env.GetEnvInt("DISPLAY_WIDTH", display.Width)
	display.MaxRows = env.GetEnvInt("DISPLAY_MAX_ROWS", display.MaxRows)
	display.Border = env.GetEnvString("DISPLAY_BORDER", display.Border)

	return Config{
		Database:   database,
		Log:        logConfig,
		Generation: generation,
		Query:      query,
		Display:    display,
	}
}

func (c Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return errors.WithMessage(err, "invalid database configuration")
	}
	if err := c.Log.Validate(); err != nil {
		return errors.WithMessage(err, "invalid logging configuration")
	}
	if err := c.Generation.Validate(); err != nil {
		return errors.WithMessage(err, "invalid generation parameters")
	}
	if err := c.Query.Validate(); err != nil {
		return errors.WithMessage(err, "invalid query parameters")
	}
	if err := c.Display.Validate(); err != nil {
		return errors.WithMessage(err, "invalid display configuration")
	}
	return nil
}

// BindGlobalFlags registers flags shared by every command. Values already in c become the defaults.
func (c *Config) BindGlobalFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Database.Driver, "db-driver", c.Database.Driver, "Store driver: sqlite, postgres or pgx")
	flags.StringVar(&c.Database.Path, "db-path", c.Database.Path, "Path of the sqlite database file")
	flags.StringVar(&c.Database.URL, "db-url", c.Database.URL, "PostgreSQL connection URL, overrides host, port, user and name")
	flags.StringVar(&c.Database.Host, "db-host", c.Database.Host, "PostgreSQL host")
	flags.IntVar(&c.Database.Port, "db-port", c.Database.Port, "PostgreSQL port")
	flags.StringVar(&c.Database.User, "db-user", c.Database.User, "PostgreSQL user")
	flags.StringVar(&c.Database.Name, "db-name", c.Database.Name, "PostgreSQL database name")
	flags.StringVar(&c.Database.SSLMode, "db-sslmode", c.Database.SSLMode, "PostgreSQL sslmode")

	flags.StringVar(&c.Log.Level, "log-level", c.Log.Level, "Log level: debug, info, warn or error")
	flags.StringVar(&c.Log.Format, "log-format", c.Log.Format, "Log format: text or json")

	flags.IntVar(&c.Display.Width, "width", c.Display.Width, "Maximum table width, 0 for unlimited")
	flags.IntVar(&c.Display.MaxRows, "max-rows", c.Display.MaxRows, "Maximum rows printed per table")
	flags.StringVar(&c.Display.Border, "border", c.Display.Border, "Table border: normal, rounded, ascii or markdown")
}

// BindGenerationFlags registers the dataset generator tunables.
func (c *Config) BindGenerationFlags(flags *pflag.FlagSet) {
	p := &c.Generation
	flags.Uint64Var(&p.Seed, "seed", p.Seed, "Master seed, 0 picks a random one")
	flags.IntVar(&p.Sessions, "sessions", p.Sessions, "Number of boot sessions")
	flags.IntVar(&p.AnomalyFromSession, "anomaly-from", p.AnomalyFromSession, "First session carrying the anomaly")
	flags.Float64Var(&p.SessionSpacing, "session-spacing", p.SessionSpacing, "Seconds between session starts")
	flags.StringVar(&p.FaultyModule, "faulty", p.FaultyModule, "Module that carries the anomaly")

	flags.IntVar(&p.Rows.BootLogs, "boot-logs", p.Rows.BootLogs, "Boot log rows per session")
	flags.IntVar(&p.Rows.ModuleEvents, "module-events", p.Rows.ModuleEvents, "Module event rows per session")
	flags.IntVar(&p.Rows.ErrorRecords, "error-records", p.Rows.ErrorRecords, "Error code rows per session")
	flags.IntVar(&p.Rows.Syscalls, "syscalls", p.Rows.Syscalls, "System call rows per session")
	flags.IntVar(&p.Rows.DriverInits, "driver-inits", p.Rows.DriverInits, "Device driver rows per session")
	flags.IntVar(&p.Rows.MemoryEvents, "memory-events", p.Rows.MemoryEvents, "Memory event rows per session")

	flags.Float64Var(&p.BaselineLoadFailure, "baseline-load-failure", p.BaselineLoadFailure, "Probability a module event fails")
	flags.Float64Var(&p.BaselineSyscallFailure, "baseline-syscall-failure", p.BaselineSyscallFailure, "Probability a system call fails")
	flags.Float64Var(&p.BaselineDriverFailure, "baseline-driver-failure", p.BaselineDriverFailure, "Probability a driver fails to initialise")
	flags.Float64Var(&p.BaselineMemoryFailure, "baseline-memory-failure", p.BaselineMemoryFailure, "Probability an allocation fails")
	flags.Float64Var(&p.ForcedInfoRate, "forced-info-rate", p.ForcedInfoRate, "Probability a boot log is forced to INFO")

	flags.Float64Var(&p.LoadFailureRate, "load-failure-rate", p.LoadFailureRate, "Failure probability of injected module events")
	flags.Float64Var(&p.SeverityBias, "severity-bias", p.SeverityBias, "Probability an injected error is HIGH or CRITICAL")
	flags.Float64Var(&p.CriticalBias, "critical-bias", p.CriticalBias, "Probability a biased injected error is CRITICAL rather than HIGH")
	flags.Float64Var(&p.SyscallFailureRate, "syscall-failure-rate", p.SyscallFailureRate, "Failure probability of injected system calls")
	flags.Float64Var(&p.NetworkInitFailureRate, "network-failure-rate", p.NetworkInitFailureRate, "Failure probability of injected network driver initialisations")
	flags.Float64Var(&p.MemoryFailureRate, "memory-failure-rate", p.MemoryFailureRate, "Failure probability of injected allocations")
	flags.BoolVar(&p.InflateAllocations, "inflate-allocations", p.InflateAllocations, "Inflate injected allocation sizes to 10-100 MiB")
	flags.Float64Var(&p.NetworkNoiseRate, "noise-rate", p.NetworkNoiseRate, "Probability a late-session network boot log reports unusual activity")
}

// BindQueryFlags registers the catalogue thresholds and score weights.
func (c *Config) BindQueryFlags(flags *pflag.FlagSet) {
	p := &c.Query
	flags.IntVar(&p.RankingLimit, "ranking-limit", p.RankingLimit, "Rows returned by failed_modules")
	flags.IntVar(&p.LateSessionFrom, "late-session", p.LateSessionFrom, "First session considered by temporal_analysis")
	flags.Float64Var(&p.TemporalWindow, "temporal-window", p.TemporalWindow, "Seconds between a load and a syscall failure in temporal_analysis")
	flags.IntVar(&p.MinMemoryRequests, "min-memory-requests", p.MinMemoryRequests, "Minimum allocations for memory_anomaly")
	flags.Float64Var(&p.MinMemoryFailurePct, "min-memory-failure-pct", p.MinMemoryFailurePct, "Failure percentage memory_anomaly must exceed")
	flags.IntVar(&p.MinNetworkFailures, "min-network-failures", p.MinNetworkFailures, "Minimum failed network drivers for network_stack")
	flags.StringVar(&p.TimelineModule, "timeline-module", p.TimelineModule, "Module traced by unified_timeline")
	flags.IntVar(&p.TimelineLimit, "timeline-limit", p.TimelineLimit, "Rows returned by unified_timeline")

	flags.IntVar(&p.MinFailedLoads, "min-failed-loads", p.MinFailedLoads, "Minimum failed loads for smoking_gun")
	flags.IntVar(&p.MinCriticalErrors, "min-critical-errors", p.MinCriticalErrors, "Minimum critical errors for smoking_gun")
	flags.Float64Var(&p.MinMemFailurePct, "min-mem-failure-pct", p.MinMemFailurePct, "Memory failure percentage smoking_gun must exceed")
	flags.Int64Var(&p.Weights.FailedLoads, "weight-failed-loads", p.Weights.FailedLoads, "Danger score weight of failed loads")
	flags.Int64Var(&p.Weights.CriticalErrors, "weight-critical-errors", p.Weights.CriticalErrors, "Danger score weight of critical errors")
	flags.Int64Var(&p.Weights.NetworkFailures, "weight-network-failures", p.Weights.NetworkFailures, "Danger score weight of network init failures")
	flags.Int64Var(&p.Weights.SyscallFailures, "weight-syscall-failures", p.Weights.SyscallFailures, "Danger score weight of syscall failures")
}
