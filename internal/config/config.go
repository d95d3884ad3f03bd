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

// Package config holds the server Configuration entity and its loading chain:
// compiled defaults, an optional line-oriented config file, and CLI flag
// overrides, in that precedence order.
package config

import (
	libval "github.com/go-playground/validator/v10"
)

// Configuration is the immutable-after-startup entity of spec.md §3.
type Configuration struct {
	Bind            string `mapstructure:"bind" validate:"required"`
	Port            int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	Workers         int    `mapstructure:"threads" validate:"gte=1,lte=64"`
	MaxConnections  int    `mapstructure:"max_conns" validate:"gte=1,lte=65535"`
	ConnTimeoutSec  int    `mapstructure:"conn_timeout" validate:"gte=1,lte=3600"`
	MaxRequestBytes int    `mapstructure:"max_req_size" validate:"gte=1024,lte=1048576"`
	MandocTimeoutS  int    `mapstructure:"mandoc_timeout" validate:"gte=1,lte=120"`
	TemplatesDir    string `mapstructure:"templates_dir" validate:"required"`
	StaticDir       string `mapstructure:"static_dir" validate:"required"`
	MandocPath      string `mapstructure:"mandoc_path"`
	ManWPath        string `mapstructure:"manw_path"`
	PkgInfoPath     string `mapstructure:"pkginfo_path"`
	AproposPath     string `mapstructure:"apropos_path"`
	ManAreaSystem   string `mapstructure:"man_area_system"`
	ManAreaPackages string `mapstructure:"man_area_packages"`
	ManAreaX11      string `mapstructure:"man_area_x11"`
	TrustedProxy    string `mapstructure:"trusted_proxy"`
	Verbose         bool   `mapstructure:"verbose"`
	LogFile         string `mapstructure:"log_file"`
}

// Default returns the compiled-in baseline configuration, the first link in
// the precedence chain described by spec.md §6.
func Default() Configuration {
	return Configuration{
		Bind:            "0.0.0.0",
		Port:            8080,
		Workers:         4,
		MaxConnections:  1024,
		ConnTimeoutSec:  60,
		MaxRequestBytes: 8192,
		MandocTimeoutS:  5,
		TemplatesDir:    "./assets/templates",
		StaticDir:       "./assets/static",
		MandocPath:      "/usr/bin/mandoc",
		ManWPath:        "/usr/bin/man",
		PkgInfoPath:     "/usr/sbin/pkg_info",
		AproposPath:     "/usr/bin/apropos",
		ManAreaSystem:   "/usr/share/man",
		ManAreaPackages: "/usr/pkg/man",
		ManAreaX11:      "/usr/X11R7/man",
		TrustedProxy:    "",
		Verbose:         false,
		LogFile:         "",
	}
}

// Validate runs struct-tag validation, mirroring the teacher's
// Options.Validate() idiom (validator.New().Struct).
func (c Configuration) Validate() error {
	return libval.New().Struct(c)
}
