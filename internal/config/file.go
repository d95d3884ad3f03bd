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

package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// knownKeys is the recognized directive set of spec.md §6. Keys outside this
// set are accepted but only warned about by the caller (Load returns them in
// the second result so cmd/miniweb can log a warning; unknown keys never
// abort startup).
var knownKeys = map[string]bool{
	"port": true, "bind": true, "threads": true, "max_conns": true,
	"conn_timeout": true, "max_req_size": true, "mandoc_timeout": true,
	"static_dir": true, "templates_dir": true, "mandoc_path": true,
	"manw_path": true, "pkginfo_path": true, "apropos_path": true,
	"man_area_system": true, "man_area_packages": true, "man_area_x11": true,
	"trusted_proxy": true, "verbose": true, "log_file": true,
}

// ResolvePath implements the lookup order of spec.md §6: explicit -f,
// ./<program>.conf, $HOME/.<program>.conf, /etc/<program>.conf. A non-empty
// explicit path is returned as is, without checking it; otherwise the first
// candidate that exists and is not a directory wins, and ResolvePath returns
// "" when none exist.
func ResolvePath(explicit, program string) string {
	if explicit != "" {
		return explicit
	}

	candidates := []string{
		fmt.Sprintf("./%s.conf", program),
	}

	if home, err := homedir.Dir(); err == nil {
		candidates = append(candidates, filepath.Join(home, "."+program+".conf"))
	}

	candidates = append(candidates, filepath.Join("/etc", program+".conf"))

	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return c
		}
	}

	return ""
}

// ParseFile reads the line-oriented directive format of spec.md §6 ("key
// value" split on first whitespace, "#" comments, blank lines ignored, keys
// case-insensitive) and decodes the recognized directives into cfg via
// viper/mapstructure. It returns the list of unknown keys encountered so the
// caller can warn without aborting startup.
func ParseFile(path string, cfg *Configuration) (unknown []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	v := viper.New()
	v.SetConfigType("")

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key := line
		var val string
		if idx := strings.IndexAny(line, " \t"); idx >= 0 {
			key = line[:idx]
			val = strings.TrimSpace(line[idx+1:])
		}
		key = strings.ToLower(key)

		if !knownKeys[key] {
			unknown = append(unknown, key)
			continue
		}

		v.Set(key, coerce(key, val))
	}

	if err = sc.Err(); err != nil {
		return unknown, err
	}

	if err = v.Unmarshal(cfg); err != nil {
		return unknown, err
	}

	return unknown, nil
}

// coerce converts a raw directive value into the type mapstructure expects
// for that key, so booleans ("yes"/"no"/"true"/"false"/"1"/"0") and integers
// decode correctly via viper.Unmarshal.
func coerce(key, val string) interface{} {
	switch key {
	case "port", "threads", "max_conns", "conn_timeout", "max_req_size", "mandoc_timeout":
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
		return val
	case "verbose":
		switch strings.ToLower(val) {
		case "yes", "true", "1":
			return true
		case "no", "false", "0":
			return false
		}
		return false
	default:
		return val
	}
}
