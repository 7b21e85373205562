package record

import "slices"

// Module catalogue of the simulated kernel.
var (
	LegitimateModules = []string{
		"e1000e", "iwlwifi", "i915", "snd_hda_intel", "uvcvideo",
		"bluetooth", "usb_storage", "ext4", "xfs", "dm_crypt",
		"kvm_intel", "vboxdrv", "nvidia", "radeon", "nouveau",
	}
	DecoyModules = []string{"old_netfilter", "netfilter_legacy", "compat_netfilter"}
)

const DefaultFaultyModule = "corrupted_netfilter"

// AllModules returns legitimate modules, the faulty module and the decoys, in that order.
// A faulty module picked from the legitimate ones is not listed twice.
func AllModules(faulty string) []string {
	modules := make([]string, 0, len(LegitimateModules)+1+len(DecoyModules))
	modules = append(modules, LegitimateModules...)
	if !IsLegitimate(faulty) {
		modules = append(modules, faulty)
	}
	return append(modules, DecoyModules...)
}

func IsDecoy(module string) bool {
	for _, d := range DecoyModules {
		if d == module {
			return true
		}
	}
	return false
}

func IsLegitimate(module string) bool {
	for _, m := range LegitimateModules {
		if m == module {
			return true
		}
	}
	return false
}

const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelCrit  = "CRIT"
	LevelDebug = "DEBUG"

	ActionLoad   = "LOAD"
	ActionUnload = "UNLOAD"

	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"

	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"

	MemAlloc   = "ALLOC"
	MemFree    = "FREE"
	MemRealloc = "REALLOC"
	MemMmap    = "MMAP"

	SubsystemNetwork = "network"
)

var (
	LogLevels   = []string{LevelInfo, LevelWarn, LevelError, LevelCrit, LevelDebug}
	Subsystems  = []string{SubsystemNetwork, "audio", "video", "usb", "pci", "disk", "memory", "cpu"}
	Severities  = []string{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	MemoryTypes = []string{MemAlloc, MemFree, MemRealloc, MemMmap}

	// Loads outnumber unloads three to one.
	Actions = []string{ActionLoad, ActionLoad, ActionLoad, ActionUnload}

	Syscalls       = []string{"open", "read", "write", "ioctl", "mmap", "socket", "connect", "bind"}
	Processes      = []string{"systemd", "NetworkManager", "pulseaudio", "Xorg", "firefox", "chrome"}
	Drivers        = []string{"eth0", "wlan0", "sda", "nvidia0", "audio0", "usb1", "bluetooth0"}
	NetworkDrivers = []string{"eth0", "wlan0"}

	ErrorDescriptions = []string{
		"Resource temporarily unavailable",
		"Invalid memory access",
		"Timeout waiting for resource",
		"Buffer overflow detected",
		"Null pointer dereference",
		"Segmentation fault",
		"Permission denied",
		"Device not responding",
	}
	// Only ever attached to injected errors.
	AnomalyDescriptions = []string{
		"Kernel panic avoided",
		"Stack corruption detected",
		"Memory leak pattern detected",
	}
)

func IsNetworkDriver(driver string) bool {
	return slices.Contains(NetworkDrivers, driver)
}
