package mapsurl

import (
	"testing"

	"github.com/tonari-app/tonari/internal/core/model"
)

func TestFor(t *testing.T) {
	pos := model.Position{Lat: 52.52, Lon: 13.405}
	tests := []struct {
		name    string
		ua      string
		place   string
		url     string
		caption string
	}{
		{
			"windows",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
			"Hbf WC",
			"bingmaps:?collection=point.52.52_13.405_Hbf%20WC",
			"Bing Maps",
		},
		{
			"mac",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Version/17.0 Safari/605.1.15",
			"Café",
			"http://maps.apple.com/?ll=52.52,13.405&q=Caf%C3%A9",
			"Apple Maps",
		},
		{
			"iphone",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148",
			"",
			"http://maps.apple.com/?ll=52.52,13.405&q=Toilet",
			"Apple Maps",
		},
		{
			"android",
			"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36",
			"WC (EG)",
			"geo:52.52,13.405?q=52.52,13.405(WC%20(EG))",
			"Maps app",
		},
		{
			"linux",
			"Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0",
			"x",
			"https://www.openstreetmap.org/?mlat=52.52&mlon=13.405&zoom=17&layers=M#map=19/52.52/13.405",
			"OpenStreetMap",
		},
		{
			"empty agent",
			"",
			"x",
			"https://www.openstreetmap.org/?mlat=52.52&mlon=13.405&zoom=17&layers=M#map=19/52.52/13.405",
			"OpenStreetMap",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := For(tt.ua, pos, tt.place)
			if got.URL != tt.url || got.Caption != tt.caption {
				t.Fatalf("got %+v\nwant url=%s caption=%s", got, tt.url, tt.caption)
			}
		})
	}
}

func TestEncodeURIComponent(t *testing.T) {
	in := "a b&c=d/é!~*'()"
	want := "a%20b%26c%3Dd%2F%C3%A9!~*'()"
	if got := encodeURIComponent(in); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
