// Package mapsurl builds the "navigate there" link for the platform the
// client runs on.
package mapsurl

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/tonari-app/tonari/internal/core/model"
)

// DefaultName labels the destination when the facility has no name.
const DefaultName = "Toilet"

type Link struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

type OS int

const (
	OtherOS OS = iota
	Windows
	MacOS
	IOS
	Android
)

// checked in this order: Windows Phone claims Android, iOS claims Mac OS X
var osRules = []struct {
	os OS
	re *regexp.Regexp
}{
	{Windows, regexp.MustCompile(`(?i)windows|win(32|64|9x|98)`)},
	{IOS, regexp.MustCompile(`(?i)ip(hone|ad|od)|cpu( iphone)? os`)},
	{Android, regexp.MustCompile(`(?i)android`)},
	{MacOS, regexp.MustCompile(`(?i)macintosh|mac os x`)},
}

func DetectOS(userAgent string) OS {
	for _, r := range osRules {
		if r.re.MatchString(userAgent) {
			return r.os
		}
	}
	return OtherOS
}

// For returns the navigation link to pos labelled name.
func For(userAgent string, pos model.Position, name string) Link {
	if name == "" {
		name = DefaultName
	}
	lat, lon := model.FormatCoord(pos.Lat), model.FormatCoord(pos.Lon)
	n := encodeURIComponent(name)

	switch DetectOS(userAgent) {
	case Windows:
		return Link{
			URL:     fmt.Sprintf("bingmaps:?collection=point.%s_%s_%s", lat, lon, n),
			Caption: "Bing Maps",
		}
	case MacOS, IOS:
		return Link{
			URL:     fmt.Sprintf("http://maps.apple.com/?ll=%s,%s&q=%s", lat, lon, n),
			Caption: "Apple Maps",
		}
	case Android:
		return Link{
			URL:     fmt.Sprintf("geo:%s,%s?q=%s,%s(%s)", lat, lon, lat, lon, n),
			Caption: "Maps app",
		}
	}
	return Link{
		URL:     fmt.Sprintf("https://www.openstreetmap.org/?mlat=%s&mlon=%s&zoom=17&layers=M#map=19/%s/%s", lat, lon, lat, lon),
		Caption: "OpenStreetMap",
	}
}

var componentUnescape = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent escapes everything but A-Z a-z 0-9 and -_.!~*'().
func encodeURIComponent(s string) string {
	return componentUnescape.Replace(url.QueryEscape(s))
}
