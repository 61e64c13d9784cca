// Package ytid extracts YouTube video IDs from the paths mpv plays.
package ytid

import (
	"regexp"
	"strings"
)

var youtubeDomains = []string{
	`(?:www\.|m\.|music\.|)youtube\.com`,
	`(?:www\.|)youtube-nocookie\.com`,
	`(?:www\.|)youtu\.be`,
}

// downloadName matches files saved by yt-dlp with its default output
// template, "Title [id].ext".
var downloadName = regexp.MustCompile(`\[([0-9A-Za-z_-]{11})\]\.(?:webm|mkv|mp4|m4a|opus)$`)

// Matcher recognizes video URLs on YouTube and on configured front-ends
// that reuse YouTube IDs, and local yt-dlp downloads.
type Matcher struct {
	re *regexp.Regexp
}

// New builds a matcher for the YouTube domains plus extraDomains, given as
// plain host names such as "yewtu.be".
func New(extraDomains []string) *Matcher {
	domains := append([]string(nil), youtubeDomains...)
	for _, d := range extraDomains {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		domains = append(domains, regexp.QuoteMeta(d))
	}
	pattern := `https?://(?:` + strings.Join(domains, "|") + `).*(?:/|%3D|v=|vi=)([0-9A-Za-z_-]{11})(?:[%#?&]|$)`
	return &Matcher{re: regexp.MustCompile(pattern)}
}

// Extract returns the video ID contained in location.
func (m *Matcher) Extract(location string) (string, bool) {
	if match := m.re.FindStringSubmatch(location); match != nil {
		return match[1], true
	}
	if match := downloadName.FindStringSubmatch(location); match != nil {
		return match[1], true
	}
	return "", false
}
