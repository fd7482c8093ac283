// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version carries the build metadata set through -ldflags.
package version

import "fmt"

// Info describes one build.
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
}

// String formats the build for --version output and logs.
func (i Info) String() string {
	v := i.Version
	if v == "" {
		v = "dev"
	}
	if i.GitCommit == "" || i.GitCommit == "unknown" {
		return v
	}
	if i.BuildTime == "" || i.BuildTime == "unknown" {
		return fmt.Sprintf("%s (commit: %s)", v, i.GitCommit)
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, i.GitCommit, i.BuildTime)
}

// IsDev reports whether the binary was built without version injection.
func (i Info) IsDev() bool {
	return i.Version == "" || i.Version == "dev"
}
