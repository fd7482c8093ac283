// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	youtubeID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	vimeoID   = regexp.MustCompile(`^[0-9]{6,12}$`)
	loomID    = regexp.MustCompile(`^[0-9a-f]{32}$`)
	startTime = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s?)?$`)
)

// EmbedURL rewrites a video or map link to the provider's embeddable URL.
// Supported are YouTube, Vimeo, Google Maps and Loom; anything else yields
// "" and the embed is not rendered.
func EmbedURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	segs := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })

	switch host {
	case "youtube.com", "youtube-nocookie.com":
		var id string
		switch {
		case len(segs) == 1 && segs[0] == "watch":
			id = u.Query().Get("v")
		case len(segs) == 2 && (segs[0] == "embed" || segs[0] == "shorts" || segs[0] == "live"):
			id = segs[1]
		}
		return youtubeEmbed(id, u.Query())
	case "youtu.be":
		if len(segs) == 1 {
			return youtubeEmbed(segs[0], u.Query())
		}
	case "vimeo.com":
		if len(segs) == 1 && vimeoID.MatchString(segs[0]) {
			return "https://player.vimeo.com/video/" + segs[0]
		}
	case "player.vimeo.com":
		if len(segs) == 2 && segs[0] == "video" && vimeoID.MatchString(segs[1]) {
			return "https://player.vimeo.com/video/" + segs[1]
		}
	case "google.com", "maps.google.com":
		return mapsEmbed(host, segs, u.Query())
	case "loom.com":
		if len(segs) == 2 && (segs[0] == "share" || segs[0] == "embed") && loomID.MatchString(segs[1]) {
			return "https://www.loom.com/embed/" + segs[1]
		}
	}
	return ""
}

func youtubeEmbed(id string, q url.Values) string {
	if !youtubeID.MatchString(id) {
		return ""
	}
	out := "https://www.youtube-nocookie.com/embed/" + id
	if s := parseStart(q.Get("t")); s > 0 {
		out += "?start=" + strconv.Itoa(s)
	} else if s := parseStart(q.Get("start")); s > 0 {
		out += "?start=" + strconv.Itoa(s)
	}
	return out
}

// parseStart reads YouTube start offsets such as "90", "90s" and "1m30s".
func parseStart(s string) int {
	if s == "" {
		return 0
	}
	m := startTime.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	total := 0
	for i, mul := range []int{3600, 60, 1} {
		if m[i+1] != "" {
			n, _ := strconv.Atoi(m[i+1])
			total += n * mul
		}
	}
	return total
}

func mapsEmbed(host string, segs []string, q url.Values) string {
	if host == "google.com" && (len(segs) == 0 || segs[0] != "maps") {
		return ""
	}
	if len(segs) >= 2 && segs[0] == "maps" && segs[1] == "embed" {
		pb := q.Get("pb")
		if pb == "" {
			return ""
		}
		return "https://www.google.com/maps/embed?pb=" + url.QueryEscape(pb)
	}
	query := q.Get("q")
	if query == "" && len(segs) >= 3 && segs[0] == "maps" && segs[1] == "place" {
		query, _ = url.PathUnescape(segs[2])
		query = strings.ReplaceAll(query, "+", " ")
	}
	if query == "" {
		return ""
	}
	return "https://maps.google.com/maps?q=" + url.QueryEscape(query) + "&output=embed"
}
