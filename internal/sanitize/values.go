// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sanitize

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strings"
)

var dataImage = regexp.MustCompile(`^data:image/(gif|jpeg|png|webp);base64,([A-Za-z0-9+/]+={0,2})$`)

// Color returns s trimmed if it is a hex, rgb() or rgba() color or
// "transparent", and "" otherwise.
func Color(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 64 {
		return ""
	}
	if colorValue.MatchString(strings.ToLower(s)) {
		return s
	}
	return ""
}

// URL returns s trimmed if it is a relative URL or uses the http, https,
// mailto or tel scheme, and "" otherwise.
func URL(s string) string {
	return checkURL(s, false)
}

// ImageURL is URL that additionally accepts base64 data URIs of raster images.
func ImageURL(s string) string {
	return checkURL(s, true)
}

func checkURL(s string, allowData bool) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// Control characters and embedded whitespace are how scheme filters get
	// bypassed ("java\tscript:"), so they are rejected outright.
	for _, r := range s {
		if r < 0x21 || r == 0x7f {
			return ""
		}
	}
	if allowData && strings.HasPrefix(strings.ToLower(s), "data:") {
		m := dataImage.FindStringSubmatch(s)
		if m == nil {
			return ""
		}
		if _, err := base64.StdEncoding.DecodeString(m[2]); err != nil {
			return ""
		}
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "":
		// A colon before the first slash would make a browser read a scheme
		// that url.Parse did not.
		if i := strings.IndexByte(s, ':'); i >= 0 {
			if j := strings.IndexAny(s, "/?#"); j < 0 || i < j {
				return ""
			}
		}
		return s
	case "http", "https":
		if u.Host == "" {
			return ""
		}
		return s
	case "mailto", "tel":
		return s
	}
	return ""
}
