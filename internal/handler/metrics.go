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

package handler

import (
	"time"

	libdur "github.com/nabbar/golib/duration"

	"github.com/flavioferretti/miniweb-sub000/internal/apperror"
	"github.com/flavioferretti/miniweb-sub000/internal/engine"
	"github.com/flavioferretti/miniweb-sub000/internal/probe"
	"github.com/flavioferretti/miniweb-sub000/internal/sampler"
)

// uptimePayload reports the system uptime in both machine- and
// human-readable form under the single spec-mandated "uptime" key.
type uptimePayload struct {
	Seconds float64 `json:"seconds"`
	Human   string  `json:"human"`
}

// metricsPayload is the single JSON document the metrics handler composes.
// Its top-level key set is literal per spec.md §8 scenario 2: timestamp,
// hostname, cpu, memory, swap, load, os, uptime, disks,
// top_cpu_processes, top_memory_processes, process_stats, history — plus
// ports, always an empty array.
type metricsPayload struct {
	Timestamp          time.Time              `json:"timestamp"`
	Hostname           string                 `json:"hostname"`
	CPU                probe.CPUInfo          `json:"cpu"`
	Memory             probe.MemoryInfo       `json:"memory"`
	Swap               probe.SwapInfo         `json:"swap"`
	Load               probe.LoadInfo         `json:"load"`
	OS                 probe.Uname            `json:"os"`
	Uptime             uptimePayload          `json:"uptime"`
	Disks              []probe.Mount          `json:"disks"`
	Ports              []struct{}             `json:"ports"`
	TopCPUProcesses    []probe.ProcessInfo    `json:"top_cpu_processes"`
	TopMemoryProcesses []probe.ProcessInfo    `json:"top_memory_processes"`
	ProcessStats       probe.ProcessStats     `json:"process_stats"`
	History            []sampler.MetricSample `json:"history"`
}

// NewMetricsHandler builds the GET /api/metrics handler. A single process
// snapshot feeds the CPU-top, memory-top, and aggregate stats computations
// (spec.md §4.7: "a single snapshot of the process list is shared").
func NewMetricsHandler(d *Deps) engine.Handler {
	return func(req *engine.Request, resp *engine.Response) {
		mem, err := probe.CollectMemory()
		if err != nil {
			writeJSONError(resp, apperror.CodeInternal, "collecting memory: "+err.Error())
			return
		}
		swap, err := probe.CollectSwap()
		if err != nil {
			writeJSONError(resp, apperror.CodeInternal, "collecting swap: "+err.Error())
			return
		}
		ld, err := probe.CollectLoad()
		if err != nil {
			writeJSONError(resp, apperror.CodeInternal, "collecting load: "+err.Error())
			return
		}
		un, err := probe.CollectUname()
		if err != nil {
			writeJSONError(resp, apperror.CodeInternal, "collecting uname: "+err.Error())
			return
		}
		uptime, err := probe.CollectUptime()
		if err != nil {
			writeJSONError(resp, apperror.CodeInternal, "collecting uptime: "+err.Error())
			return
		}
		disks, err := probe.CollectMounts()
		if err != nil {
			writeJSONError(resp, apperror.CodeInternal, "collecting disks: "+err.Error())
			return
		}
		snap, err := probe.CollectProcesses()
		if err != nil {
			writeJSONError(resp, apperror.CodeInternal, "collecting processes: "+err.Error())
			return
		}

		payload := metricsPayload{
			Timestamp: time.Now(),
			Hostname:  un.Hostname,
			CPU:       probe.CollectCPU(200 * time.Millisecond),
			Memory:    mem,
			Swap:      swap,
			Load:      ld,
			OS:        un,
			Uptime: uptimePayload{
				Seconds: uptime.Seconds(),
				Human:   libdur.ParseDuration(uptime).String(),
			},
			Disks:              disks,
			Ports:              []struct{}{},
			TopCPUProcesses:    probe.TopByCPU(snap, 10),
			TopMemoryProcesses: probe.TopByMemory(snap, 10),
			ProcessStats:       snap.Stats,
			History:            d.Metric.Last(d.Ctx, historyLength),
		}

		writeJSON(resp, 200, payload)
		resp.ExtraHeader = append(resp.ExtraHeader, "Cache-Control: no-cache, no-store, must-revalidate\r\n"...)
	}
}
