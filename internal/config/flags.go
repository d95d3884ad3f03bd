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

// Flags carries the subset of Configuration that the CLI can override; a nil
// pointer marks a flag the user did not pass, so Apply only touches fields
// the user actually passed (spec.md §6: "CLI flags override file values").
type Flags struct {
	Port       *int
	Bind       *string
	Workers    *int
	MaxConns   *int
	Verbose    *bool
	ConfigPath *string
}

// Apply overrides fields of cfg with any non-nil flag value.
func (f Flags) Apply(cfg *Configuration) {
	if f.Port != nil {
		cfg.Port = *f.Port
	}
	if f.Bind != nil {
		cfg.Bind = *f.Bind
	}
	if f.Workers != nil {
		cfg.Workers = *f.Workers
	}
	if f.MaxConns != nil {
		cfg.MaxConnections = *f.MaxConns
	}
	if f.Verbose != nil {
		cfg.Verbose = *f.Verbose
	}
}

// Load assembles the final Configuration per spec.md §6 precedence: compiled
// defaults, then an optional config file (resolved via ResolvePath), then CLI
// flag overrides. It returns any unknown directive keys found in the file for
// the caller to log as warnings.
func Load(explicitPath, program string, flags Flags) (Configuration, []string, error) {
	cfg := Default()

	path := explicitPath
	if path == "" {
		path = ResolvePath("", program)
	} else {
		path = ResolvePath(explicitPath, program)
	}

	var unknown []string
	if path != "" {
		var err error
		unknown, err = ParseFile(path, &cfg)
		if err != nil {
			return cfg, unknown, err
		}
	}

	flags.Apply(&cfg)

	return cfg, unknown, nil
}
