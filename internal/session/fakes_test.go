package session

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tonari-app/tonari/internal/attributes"
	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/merge"
	"github.com/tonari-app/tonari/internal/visitevents"
)

type fakeSearcher struct {
	mu       sync.Mutex
	results  map[model.Position][]model.Facility
	gates    map[model.Position]chan struct{}
	err      error
	calls    atomic.Int32
	lastOpts merge.Options
}

func (f *fakeSearcher) Search(ctx context.Context, pos model.Position, opts merge.Options) ([]model.Facility, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastOpts = opts
	gate := f.gates[pos]
	res := f.results[pos]
	err := f.err
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

type fakeBackend struct {
	mu           sync.Mutex
	comments     map[string][]model.Comment
	commentCalls atomic.Int32
	commentDelay time.Duration
	added        []string
	updated      map[string]any
	created      []string
	visits       []model.Position
	flagged      []string
	uploaded     []byte
	err          error
}

func (f *fakeBackend) Comments(_ context.Context, id model.ID) ([]model.Comment, error) {
	f.commentCalls.Add(1)
	time.Sleep(f.commentDelay)
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Comment{}, f.comments[id.String()]...), nil
}

func (f *fakeBackend) CreateFacility(_ context.Context, name string, _ model.Position) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, name)
	return f.err
}

func (f *fakeBackend) UpdateFacility(_ context.Context, _ model.ID, _ model.Position, payload map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = payload
	return f.err
}

func (f *fakeBackend) WillVisit(_ context.Context, _ model.ID, search model.Position) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visits = append(f.visits, search)
	return f.err
}

func (f *fakeBackend) FlagImage(_ context.Context, _ model.ID, imageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flagged = append(f.flagged, imageID)
	return f.err
}

func (f *fakeBackend) AddComment(_ context.Context, id model.ID, _ model.Position, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, content)
	if f.comments == nil {
		f.comments = map[string][]model.Comment{}
	}
	f.comments[id.String()] = append(f.comments[id.String()], model.Comment{ID: "new", Content: content})
	return nil
}

func (f *fakeBackend) UploadImage(_ context.Context, _ model.ID, _ model.Position, jpeg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = jpeg
	return f.err
}

type fakeImages struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (f *fakeImages) Images(_ context.Context, id model.ID) ([]string, error) {
	f.calls.Add(1)
	time.Sleep(f.delay)
	if f.err != nil {
		return nil, f.err
	}
	return []string{"img-" + id.OriginalID}, nil
}

type fakeGeocoder struct {
	calls atomic.Int32
	none  bool
}

func (f *fakeGeocoder) Reverse(context.Context, model.Position) (*string, error) {
	f.calls.Add(1)
	if f.none {
		return nil, nil
	}
	s := "Hauptstraße 1"
	return &s, nil
}

type fakeVisits struct {
	mu     sync.Mutex
	events []visitevents.Event
}

func (f *fakeVisits) Publish(ev visitevents.Event) {
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
}

type harness struct {
	s        *Session
	searcher *fakeSearcher
	backend  *fakeBackend
	images   *fakeImages
	geo      *fakeGeocoder
	visits   *fakeVisits
}

var (
	posA = model.Position{Lat: 52.5, Lon: 13.4}
	posB = model.Position{Lat: 48.1, Lon: 11.5}
)

func fac(orig string, dist float64) model.Facility {
	return model.Facility{
		Attributes: attributes.Set{attributes.IsOpen: attributes.Bool(true)},
		Features: model.Features{
			Coord:    model.Position{Lat: 52.5, Lon: 13.4},
			Distance: dist,
			Name:     "Toilet " + orig,
			ID:       model.ID{SourceID: "src", OriginalID: orig},
		},
	}
}

func newHarness(t *testing.T, mod func(*Deps)) *harness {
	t.Helper()
	h := &harness{
		searcher: &fakeSearcher{
			results: map[model.Position][]model.Facility{
				posA: {fac("a", 10), fac("b", 20), fac("c", 30)},
				posB: {fac("x", 5)},
			},
			gates: map[model.Position]chan struct{}{},
		},
		backend: &fakeBackend{},
		images:  &fakeImages{},
		geo:     &fakeGeocoder{},
		visits:  &fakeVisits{},
	}
	deps := Deps{
		Searcher: h.searcher,
		Backend:  h.backend,
		Images:   h.images,
		Geocoder: h.geo,
		Visits:   h.visits,
	}
	if mod != nil {
		mod(&deps)
	}
	h.s = New("test-session", deps)
	return h
}

func pngBytes(t *testing.T, w, hgt int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, hgt))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type fakeChanges struct {
	mu  sync.Mutex
	ops []string
}

func (f *fakeChanges) FacilityChanged(_ context.Context, op string, _ model.ID, _ model.Position) {
	f.mu.Lock()
	f.ops = append(f.ops, op)
	f.mu.Unlock()
}
