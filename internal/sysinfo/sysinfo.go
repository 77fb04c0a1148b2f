// Package sysinfo answers the shell's informational commands from the host
// the process runs on.
package sysinfo

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/Neev4n/flashshell/pkg/shell"
)

// Info implements shell.EnvironmentInfo with gopsutil.
type Info struct {
	start time.Time
	now   func() time.Time

	hostInfo      func() (*host.InfoStat, error)
	hostUptime    func() (uint64, error)
	virtualMemory func() (*mem.VirtualMemoryStat, error)
	cpuInfo       func() ([]cpu.InfoStat, error)
	cpuCounts     func(logical bool) (int, error)
	heapInUse     func() uint64
}

var _ shell.EnvironmentInfo = (*Info)(nil)

// New returns an Info whose process uptime counts from start.
func New(start time.Time) *Info {
	return &Info{
		start:         start,
		now:           time.Now,
		hostInfo:      host.Info,
		hostUptime:    host.Uptime,
		virtualMemory: mem.VirtualMemory,
		cpuInfo:       cpu.Info,
		cpuCounts:     cpu.Counts,
		heapInUse: func() uint64 {
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			return ms.HeapInuse
		},
	}
}

func (i *Info) Uptime() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Uptime: %s", formatDuration(i.now().Sub(i.start)))

	if secs, err := i.hostUptime(); err == nil {
		fmt.Fprintf(&b, "\nHost uptime: %s", formatDuration(time.Duration(secs)*time.Second))
	}

	return b.String()
}

func (i *Info) Free() string {
	var b strings.Builder

	if vm, err := i.virtualMemory(); err == nil {
		fmt.Fprintf(&b, "Free memory: %s of %s (%.1f%% used)\n",
			humanize.IBytes(vm.Available), humanize.IBytes(vm.Total), vm.UsedPercent)
	} else {
		fmt.Fprintf(&b, "Free memory: unknown (%v)\n", err)
	}

	fmt.Fprintf(&b, "Shell heap in use: %s", humanize.IBytes(i.heapInUse()))
	return b.String()
}

func (i *Info) ChipInfo() string {
	var b strings.Builder

	if cpus, err := i.cpuInfo(); err == nil && len(cpus) > 0 {
		c := cpus[0]
		fmt.Fprintf(&b, "CPU model: %s\n", strings.TrimSpace(c.ModelName))
		if c.Mhz > 0 {
			fmt.Fprintf(&b, "CPU frequency: %.0f MHz\n", c.Mhz)
		}
	} else {
		fmt.Fprintf(&b, "CPU model: unknown\n")
	}

	physical, perr := i.cpuCounts(false)
	logical, lerr := i.cpuCounts(true)
	if perr == nil && lerr == nil {
		fmt.Fprintf(&b, "Cores: %d physical, %d logical\n", physical, logical)
	}

	if h, err := i.hostInfo(); err == nil {
		fmt.Fprintf(&b, "Host: %s\n", h.Hostname)
		fmt.Fprintf(&b, "Platform: %s %s (%s)\n", h.Platform, h.PlatformVersion, h.KernelArch)
	}

	fmt.Fprintf(&b, "Runtime: %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return b.String()
}

// formatDuration renders d as "<days>d HH:MM:SS".
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	return fmt.Sprintf("%dd %02d:%02d:%02d", days, hours, minutes, seconds)
}
