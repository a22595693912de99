package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync/atomic"
	"testing"

	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/feeds/wheelmap"
)

type stubPlaces struct {
	calls atomic.Int32
	urls  []string
}

func (s *stubPlaces) Images(context.Context, string) ([]string, error) {
	s.calls.Add(1)
	return s.urls, nil
}

type stubNodes struct {
	calls atomic.Int32
	urls  []string
	err   error
}

func (s *stubNodes) NodePhotos(context.Context, string) ([]string, error) {
	s.calls.Add(1)
	return s.urls, s.err
}

type stubBackend struct{ urls []string }

func (s *stubBackend) Images(context.Context, model.ID) ([]string, error) { return s.urls, nil }

func TestImages_OrderForMappedSource(t *testing.T) {
	p := &stubPlaces{urls: []string{"ac1"}}
	n := &stubNodes{urls: []string{"wm1", "wm2"}}
	g := New(p, n, &stubBackend{urls: []string{"be1"}})

	got, err := g.Images(context.Background(), model.ID{SourceID: wheelmap.SourceID, OriginalID: "42"})
	if err != nil {
		t.Fatalf("Images: %v", err)
	}
	if fmt.Sprint(got) != "[ac1 wm1 wm2 be1]" {
		t.Fatalf("got %v", got)
	}
}

func TestImages_OtherSourcesOnlyBackend(t *testing.T) {
	p := &stubPlaces{urls: []string{"ac1"}}
	n := &stubNodes{urls: []string{"wm1"}}
	g := New(p, n, &stubBackend{urls: []string{"be1"}})

	got, err := g.Images(context.Background(), model.ID{SourceID: "other", OriginalID: "42"})
	if err != nil {
		t.Fatalf("Images: %v", err)
	}
	if fmt.Sprint(got) != "[be1]" {
		t.Fatalf("got %v", got)
	}
	if p.calls.Load() != 0 || n.calls.Load() != 0 {
		t.Fatal("feed and mapping service must not be asked for other sources")
	}
}

func TestImages_TransportErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	g := New(&stubPlaces{}, &stubNodes{err: boom}, &stubBackend{})
	if _, err := g.Images(context.Background(), model.ID{SourceID: wheelmap.SourceID}); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
}

func TestFit(t *testing.T) {
	cases := []struct{ w, h, ww, wh int }{
		{800, 600, 800, 600},
		{1024, 1024, 1024, 1024},
		{4000, 3000, 1024, 768},
		{3000, 4000, 768, 1024},
		{5000, 2, 1024, 1},
	}
	for _, c := range cases {
		if w, h := Fit(c.w, c.h, MaxEdge); w != c.ww || h != c.wh {
			t.Errorf("Fit(%d,%d)=%d,%d want %d,%d", c.w, c.h, w, h, c.ww, c.wh)
		}
	}
}

func TestPrepare_DownscalesPNGToJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2048, 1024))
	for x := range 2048 {
		src.Set(x, 10, color.RGBA{R: 200, A: 255})
	}
	var in bytes.Buffer
	if err := png.Encode(&in, src); err != nil {
		t.Fatal(err)
	}

	out, err := Prepare(&in)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not jpeg: %v", err)
	}
	if cfg.Width != 1024 || cfg.Height != 512 {
		t.Fatalf("size=%dx%d", cfg.Width, cfg.Height)
	}
}

func TestPrepare_RejectsGarbage(t *testing.T) {
	if _, err := Prepare(bytes.NewReader([]byte("not an image"))); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatal("expected decode error")
	}
}
