package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tonari-app/tonari/internal/core/model"
)

func TestAddressLine(t *testing.T) {
	cases := []struct {
		in   *Address
		want string
	}{
		{&Address{Road: "Hauptstraße", HouseNumber: "5"}, "Hauptstraße 5"},
		{&Address{Road: "Hauptstraße", Pedestrian: "Platz"}, "Hauptstraße"},
		{&Address{Pedestrian: "Alexanderplatz", Footway: "Weg"}, "Alexanderplatz"},
		{&Address{HouseNumber: "5", Footway: "Uferweg"}, "Uferweg"},
	}
	for _, c := range cases {
		got := c.in.Line()
		if got == nil || *got != c.want {
			t.Errorf("Line(%+v)=%v want %q", c.in, got, c.want)
		}
	}
	if (&Address{HouseNumber: "5"}).Line() != nil {
		t.Error("house number alone is not an address")
	}
	if (*Address)(nil).Line() != nil {
		t.Error("nil address must be nil")
	}
}

func TestReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("format") != "jsonv2" || q.Get("accept-language") != "de" || q.Get("key") != "k" {
			t.Errorf("query=%v", q)
		}
		if q.Get("lat") == "0" {
			_, _ = io.WriteString(w, `{"error":"Unable to geocode"}`)
			return
		}
		_, _ = io.WriteString(w, `{"address":{"road":"Unter den Linden","house_number":"1"}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "k", nil, srv.Client(), nil)
	got, err := c.Reverse(context.Background(), model.Position{Lat: 52.5, Lon: 13.4})
	if err != nil || got == nil || *got != "Unter den Linden 1" {
		t.Fatalf("got %v err %v", got, err)
	}

	got, err = c.Reverse(context.Background(), model.Position{Lat: 0, Lon: 0})
	if err != nil || got != nil {
		t.Fatalf("no address: got %v err %v", got, err)
	}
}

func TestParseLanguages(t *testing.T) {
	cases := []struct {
		in, want string
		err      bool
	}{
		{"", "de", false},
		{"en;q=0.5, DE-at", "de-AT,en", false},
		{"fr,fr", "fr", false},
		{"!!", "", true},
	}
	for _, c := range cases {
		tags, err := ParseLanguages(c.in)
		if c.err {
			if err == nil {
				t.Errorf("%q: expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", c.in, err)
			continue
		}
		if got := acceptLanguage(tags); got != c.want {
			t.Errorf("%q: accept-language=%q want %q", c.in, got, c.want)
		}
	}
}

func TestReverse_SendsConfiguredLanguages(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("accept-language")
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	tags, err := ParseLanguages("ja,en;q=0.8")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(srv.URL, "k", tags, srv.Client(), nil).Reverse(context.Background(), model.Position{Lat: 35.6, Lon: 139.7}); err != nil {
		t.Fatal(err)
	}
	if got != "ja,en" {
		t.Fatalf("accept-language=%q", got)
	}
}
