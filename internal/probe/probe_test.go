package probe

import (
	"os"
	"testing"
	"time"
)

func TestCollectCPUNeverErrors(t *testing.T) {
	info := CollectCPU(10 * time.Millisecond)
	if info.UsedPercent < 0 || info.UsedPercent > 100 {
		t.Fatalf("unexpected CPU percent: %v", info.UsedPercent)
	}
}

func TestCollectMemory(t *testing.T) {
	info, err := CollectMemory()
	if err != nil {
		t.Skipf("memory collection unsupported on this platform: %v", err)
	}
	if info.TotalMB <= 0 {
		t.Fatalf("expected positive total memory, got %v", info.TotalMB)
	}
}

func TestCollectRoutesOnLinux(t *testing.T) {
	if _, err := os.Stat("/proc/net/route"); err != nil {
		t.Skip("not running on Linux with /proc/net/route")
	}

	routes, err := CollectRoutes()
	if err != nil {
		t.Fatalf("CollectRoutes: %v", err)
	}
	if len(routes) > 50 {
		t.Fatalf("expected at most 50 routes, got %d", len(routes))
	}
}

func TestTopByCPUOrdering(t *testing.T) {
	snap := ProcessSnapshot{Processes: []ProcessInfo{
		{PID: 1, CPUPct: 2.0},
		{PID: 2, CPUPct: 9.0},
		{PID: 3, CPUPct: 5.0},
	}}

	top := TopByCPU(snap, 2)
	if len(top) != 2 || top[0].PID != 2 || top[1].PID != 3 {
		t.Fatalf("unexpected ordering: %+v", top)
	}
}

func TestTopByMemoryCapsAtAvailable(t *testing.T) {
	snap := ProcessSnapshot{Processes: []ProcessInfo{{PID: 1, RSSMB: 1}}}
	top := TopByMemory(snap, 10)
	if len(top) != 1 {
		t.Fatalf("expected top to cap at available process count, got %d", len(top))
	}
}
