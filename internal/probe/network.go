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

package probe

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"net"
	"os"
	"strings"

	gnet "github.com/shirou/gopsutil/net"
)

// CollectRoutes reads the kernel routing table from /proc/net/route, capped
// at 50 entries (spec.md §4.6: "up to 50 routes").
func CollectRoutes() ([]Route, error) {
	f, err := os.Open("/proc/net/route")
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var routes []Route
	sc := bufio.NewScanner(f)
	first := true
	for sc.Scan() && len(routes) < 50 {
		if first {
			first = false
			continue // header line
		}

		fields := strings.Fields(sc.Text())
		if len(fields) < 8 {
			continue
		}

		routes = append(routes, Route{
			Interface:   fields[0],
			Destination: hexToIP(fields[1]),
			Gateway:     hexToIP(fields[2]),
			Flags:       fields[3],
		})
	}

	return routes, sc.Err()
}

// hexToIP converts the little-endian hex-encoded address used by
// /proc/net/route into dotted-decimal form. Malformed input returns "0.0.0.0"
// rather than erroring, since one unparsable route should not fail the whole
// sample.
func hexToIP(hex string) string {
	var n uint32
	if _, err := fmt.Sscanf(hex, "%x", &n); err != nil {
		return "0.0.0.0"
	}

	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, n)
	return net.IP(buf).String()
}

// CollectDNS parses /etc/resolv.conf for nameservers and search domains.
func CollectDNS() (DNSConfig, error) {
	f, err := os.Open("/etc/resolv.conf")
	if err != nil {
		return DNSConfig{}, err
	}
	defer func() { _ = f.Close() }()

	var cfg DNSConfig
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		switch fields[0] {
		case "nameserver":
			cfg.Nameservers = append(cfg.Nameservers, fields[1])
		case "search", "domain":
			cfg.Search = append(cfg.Search, fields[1:]...)
		}
	}

	return cfg, sc.Err()
}

// CollectInterfaces returns per-interface counters, capped at 10 rows
// (spec.md §4.6: "up to 10 interface-counter rows").
func CollectInterfaces() ([]Interface, error) {
	counters, err := gnet.IOCounters(true)
	if err != nil {
		return nil, err
	}

	if len(counters) > 10 {
		counters = counters[:10]
	}

	out := make([]Interface, 0, len(counters))
	for _, c := range counters {
		out = append(out, Interface{
			Name:      c.Name,
			RxBytes:   c.BytesRecv,
			TxBytes:   c.BytesSent,
			RxPackets: c.PacketsRecv,
			TxPackets: c.PacketsSent,
		})
	}

	return out, nil
}
