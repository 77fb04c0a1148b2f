package sysinfo

import (
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/stretchr/testify/assert"
)

func fixedInfo() *Info {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	i := New(start)
	i.now = func() time.Time { return start.Add(26*time.Hour + 3*time.Minute + 4*time.Second) }
	i.hostUptime = func() (uint64, error) { return 3*86400 + 59, nil }
	i.virtualMemory = func() (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 8 << 30, Available: 2 << 30, UsedPercent: 75}, nil
	}
	i.heapInUse = func() uint64 { return 3 << 20 }
	i.cpuInfo = func() ([]cpu.InfoStat, error) {
		return []cpu.InfoStat{{ModelName: " Test CPU ", Mhz: 2400}}, nil
	}
	i.cpuCounts = func(logical bool) (int, error) {
		if logical {
			return 8, nil
		}
		return 4, nil
	}
	i.hostInfo = func() (*host.InfoStat, error) {
		return &host.InfoStat{Hostname: "bench", Platform: "debian", PlatformVersion: "12", KernelArch: "x86_64"}, nil
	}
	return i
}

func TestInfo_Uptime(t *testing.T) {
	assert.Equal(t, "Uptime: 1d 02:03:04\nHost uptime: 3d 00:00:59", fixedInfo().Uptime())

	i := fixedInfo()
	i.hostUptime = func() (uint64, error) { return 0, errors.New("unsupported") }
	assert.Equal(t, "Uptime: 1d 02:03:04", i.Uptime())
}

func TestInfo_Free(t *testing.T) {
	assert.Equal(t, "Free memory: 2.0 GiB of 8.0 GiB (75.0% used)\nShell heap in use: 3.0 MiB", fixedInfo().Free())

	i := fixedInfo()
	i.virtualMemory = func() (*mem.VirtualMemoryStat, error) { return nil, errors.New("no /proc") }
	assert.Contains(t, i.Free(), "Free memory: unknown (no /proc)")
}

func TestInfo_ChipInfo(t *testing.T) {
	got := fixedInfo().ChipInfo()

	assert.Contains(t, got, "CPU model: Test CPU\n")
	assert.Contains(t, got, "CPU frequency: 2400 MHz\n")
	assert.Contains(t, got, "Cores: 4 physical, 8 logical\n")
	assert.Contains(t, got, "Host: bench\n")
	assert.Contains(t, got, "Platform: debian 12 (x86_64)\n")
	assert.Contains(t, got, "Runtime: go")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0d 00:00:00"},
		{-time.Second, "0d 00:00:00"},
		{59 * time.Second, "0d 00:00:59"},
		{25 * time.Hour, "1d 01:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.in))
		})
	}
}
