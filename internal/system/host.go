package system

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostReport summarises the machine a render ran on.
type HostReport struct {
	Platform      string
	Arch          string
	LogicalCPUs   int
	PhysicalCPUs  int
	TotalMemory   uint64
	AvailMemory   uint64
	MemoryPercent float64
}

// CollectHost gathers a HostReport. Fields gopsutil cannot read stay zero.
func CollectHost(ctx context.Context) HostReport {
	r := HostReport{Arch: runtime.GOARCH, LogicalCPUs: runtime.NumCPU()}

	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		r.LogicalCPUs = n
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		r.PhysicalCPUs = n
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		r.TotalMemory = vm.Total
		r.AvailMemory = vm.Available
		r.MemoryPercent = vm.UsedPercent
	}
	if info, err := host.InfoWithContext(ctx); err == nil {
		r.Platform = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
	} else {
		r.Platform = runtime.GOOS
	}
	return r
}

// EncoderThreads suggests an ffmpeg thread count: all logical CPUs, or half
// of them when less than 2 GiB of memory is free.
func (r HostReport) EncoderThreads() int {
	n := r.LogicalCPUs
	if n <= 0 {
		return 0
	}
	if r.AvailMemory > 0 && r.AvailMemory < 2<<30 {
		n = max(1, n/2)
	}
	return n
}

func (r HostReport) String() string {
	return fmt.Sprintf("%s/%s, %d logical CPUs (%d physical), %.1f GiB memory, %.0f%% used",
		r.Platform, r.Arch, r.LogicalCPUs, r.PhysicalCPUs,
		float64(r.TotalMemory)/(1<<30), r.MemoryPercent)
}
