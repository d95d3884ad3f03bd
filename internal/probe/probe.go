/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package probe is the Platform Probe (P): pure, side-effect-free collection
// of kernel/process state. Every exported function returns a fresh snapshot;
// none retain state between calls, leaving caching and retention to the
// sampler layer.
package probe

import (
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/load"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
)

// Route is one entry of the kernel routing table.
type Route struct {
	Destination string `json:"destination"`
	Gateway     string `json:"gateway"`
	Interface   string `json:"interface"`
	Flags       string `json:"flags"`
}

// DNSConfig is the resolved DNS configuration (nameservers, search domains).
type DNSConfig struct {
	Nameservers []string `json:"nameservers"`
	Search      []string `json:"search"`
}

// Interface is one network interface counter row.
type Interface struct {
	Name      string `json:"name"`
	RxBytes   uint64 `json:"rx_bytes"`
	TxBytes   uint64 `json:"tx_bytes"`
	RxPackets uint64 `json:"rx_packets"`
	TxPackets uint64 `json:"tx_packets"`
}

// CPUInfo is a single snapshot of CPU utilization.
type CPUInfo struct {
	UsedPercent float64 `json:"used_percent"`
	Cores       int     `json:"cores"`
}

// MemoryInfo is a single snapshot of RAM usage in megabytes.
type MemoryInfo struct {
	UsedMB    float64 `json:"used_mb"`
	TotalMB   float64 `json:"total_mb"`
	AvailMB   float64 `json:"avail_mb"`
	UsedPct   float64 `json:"used_percent"`
	CachedMB  float64 `json:"cached_mb"`
}

// SwapInfo is a single snapshot of swap usage in megabytes.
type SwapInfo struct {
	UsedMB  float64 `json:"used_mb"`
	TotalMB float64 `json:"total_mb"`
}

// LoadInfo is the standard 1/5/15 minute load average triple.
type LoadInfo struct {
	Load1  float64 `json:"load1"`
	Load5  float64 `json:"load5"`
	Load15 float64 `json:"load15"`
}

// Mount is one mounted filesystem and its usage.
type Mount struct {
	Device     string  `json:"device"`
	MountPoint string  `json:"mountpoint"`
	FSType     string  `json:"fstype"`
	TotalMB    float64 `json:"total_mb"`
	UsedMB     float64 `json:"used_mb"`
	UsedPct    float64 `json:"used_percent"`
}

// ProcessInfo is one process row of a process snapshot.
type ProcessInfo struct {
	PID     int32   `json:"pid"`
	Name    string  `json:"name"`
	CPUPct  float64 `json:"cpu_percent"`
	RSSMB   float64 `json:"rss_mb"`
	Cmdline string  `json:"cmdline"`
}

// ProcessStats are aggregate counts across a process snapshot.
type ProcessStats struct {
	Total    int `json:"total"`
	Running  int `json:"running"`
	Sleeping int `json:"sleeping"`
	Zombie   int `json:"zombie"`
}

// Uname is the kernel identification tuple.
type Uname struct {
	Sysname  string `json:"sysname"`
	Release  string `json:"release"`
	Version  string `json:"version"`
	Machine  string `json:"machine"`
	Hostname string `json:"hostname"`
}

// CollectCPU returns the instantaneous CPU-used percentage averaged across
// cores. gopsutil's Percent call requires a short blocking interval to
// compute a delta; on platforms or sandboxes where the underlying counters
// are unavailable it returns a zeroed sample rather than erroring, per
// spec.md §9's "zero CPU sample is permissible" resolution.
func CollectCPU(interval time.Duration) CPUInfo {
	pct, err := cpu.Percent(interval, false)
	counts, _ := cpu.Counts(true)

	if err != nil || len(pct) == 0 {
		return CPUInfo{UsedPercent: 0, Cores: counts}
	}

	return CPUInfo{UsedPercent: pct[0], Cores: counts}
}

const mb = 1024 * 1024

// CollectMemory returns virtual memory usage in megabytes.
func CollectMemory() (MemoryInfo, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return MemoryInfo{}, err
	}

	return MemoryInfo{
		UsedMB:   float64(v.Used) / mb,
		TotalMB:  float64(v.Total) / mb,
		AvailMB:  float64(v.Available) / mb,
		UsedPct:  v.UsedPercent,
		CachedMB: float64(v.Cached) / mb,
	}, nil
}

// CollectSwap returns swap usage in megabytes.
func CollectSwap() (SwapInfo, error) {
	s, err := mem.SwapMemory()
	if err != nil {
		return SwapInfo{}, err
	}

	return SwapInfo{
		UsedMB:  float64(s.Used) / mb,
		TotalMB: float64(s.Total) / mb,
	}, nil
}

// CollectLoad returns the 1/5/15 minute load average.
func CollectLoad() (LoadInfo, error) {
	l, err := load.Avg()
	if err != nil {
		return LoadInfo{}, err
	}

	return LoadInfo{Load1: l.Load1, Load5: l.Load5, Load15: l.Load15}, nil
}

// CollectMounts returns usage for every mounted, physical partition.
func CollectMounts() ([]Mount, error) {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, err
	}

	out := make([]Mount, 0, len(parts))
	for _, p := range parts {
		u, uerr := disk.Usage(p.Mountpoint)
		if uerr != nil {
			continue
		}

		out = append(out, Mount{
			Device:     p.Device,
			MountPoint: p.Mountpoint,
			FSType:     p.Fstype,
			TotalMB:    float64(u.Total) / mb,
			UsedMB:     float64(u.Used) / mb,
			UsedPct:    u.UsedPercent,
		})
	}

	return out, nil
}

// CollectUptime returns system uptime.
func CollectUptime() (time.Duration, error) {
	secs, err := host.Uptime()
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}

// CollectUname returns the kernel identification tuple.
func CollectUname() (Uname, error) {
	info, err := host.Info()
	if err != nil {
		return Uname{}, err
	}

	return Uname{
		Sysname:  info.OS,
		Release:  info.KernelVersion,
		Version:  info.PlatformVersion,
		Machine:  info.KernelArch,
		Hostname: info.Hostname,
	}, nil
}

// ProcessSnapshot is a single shared capture of every running process, used
// by the metrics handler so the CPU-top, memory-top, and aggregate stats
// computations observe one consistent view (spec.md §4.7).
type ProcessSnapshot struct {
	Processes []ProcessInfo
	Stats     ProcessStats
}

// CollectProcesses captures one snapshot of all running processes.
func CollectProcesses() (ProcessSnapshot, error) {
	procs, err := process.Processes()
	if err != nil {
		return ProcessSnapshot{}, err
	}

	snap := ProcessSnapshot{Processes: make([]ProcessInfo, 0, len(procs))}

	for _, p := range procs {
		name, _ := p.Name()
		cpuPct, _ := p.CPUPercent()
		memInfo, _ := p.MemoryInfo()
		cmd, _ := p.Cmdline()
		status, _ := p.Status()

		var rss float64
		if memInfo != nil {
			rss = float64(memInfo.RSS) / mb
		}

		snap.Processes = append(snap.Processes, ProcessInfo{
			PID:     p.Pid,
			Name:    name,
			CPUPct:  cpuPct,
			RSSMB:   rss,
			Cmdline: cmd,
		})

		snap.Stats.Total++
		if len(status) > 0 {
			switch status[0] {
			case "R":
				snap.Stats.Running++
			case "S", "D":
				snap.Stats.Sleeping++
			case "Z":
				snap.Stats.Zombie++
			}
		}
	}

	return snap, nil
}

// TopByCPU returns the n processes with the highest CPU percentage from an
// already-captured snapshot (spec.md §4.7: "a single snapshot ... is shared").
func TopByCPU(snap ProcessSnapshot, n int) []ProcessInfo {
	return topN(snap.Processes, n, func(p ProcessInfo) float64 { return p.CPUPct })
}

// TopByMemory returns the n processes with the highest resident memory from
// an already-captured snapshot.
func TopByMemory(snap ProcessSnapshot, n int) []ProcessInfo {
	return topN(snap.Processes, n, func(p ProcessInfo) float64 { return p.RSSMB })
}

func topN(procs []ProcessInfo, n int, key func(ProcessInfo) float64) []ProcessInfo {
	sorted := make([]ProcessInfo, len(procs))
	copy(sorted, procs)

	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && key(sorted[j]) > key(sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	if n > len(sorted) {
		n = len(sorted)
	}

	return sorted[:n]
}
