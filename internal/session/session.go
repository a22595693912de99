// Package session runs the client's state machine on the server: one store per
// client, fed by searches, side cache fills and writes.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tonari-app/tonari/internal/attributes"
	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/core/observability"
	"github.com/tonari-app/tonari/internal/gallery"
	"github.com/tonari-app/tonari/internal/invalidation"
	"github.com/tonari-app/tonari/internal/logger"
	"github.com/tonari-app/tonari/internal/merge"
	"github.com/tonari-app/tonari/internal/store"
	"github.com/tonari-app/tonari/internal/upstream"
	"github.com/tonari-app/tonari/internal/visitevents"
)

// SearchOutcome tells what RadiusSearch did.
type SearchOutcome string

const (
	SearchApplied   SearchOutcome = "applied"
	SearchDuplicate SearchOutcome = "duplicate"
	SearchStale     SearchOutcome = "stale"
	SearchFailed    SearchOutcome = "error"
)

type Session struct {
	id     string
	deps   Deps
	logger *slog.Logger
	store  *store.Store
	guard  *upstream.BlockedDomainGuard
	fills  singleflight.Group

	mu     sync.Mutex
	alerts []string
}

func New(id string, deps Deps) *Session {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Session{
		id:     id,
		deps:   deps,
		logger: log.With("session_id", id),
		store:  store.New(),
	}
	s.guard = upstream.NewBlockedDomainGuard(s.pushAlert)
	return s
}

func (s *Session) ID() string { return s.id }

// State returns the current snapshot.
func (s *Session) State() *store.State { return s.store.State() }

func (s *Session) pushAlert(msg string) {
	s.mu.Lock()
	s.alerts = append(s.alerts, msg)
	s.mu.Unlock()
}

// TakeAlerts returns and clears the alerts raised since the last call.
func (s *Session) TakeAlerts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.alerts
	s.alerts = nil
	return out
}

func (s *Session) ctx(ctx context.Context) context.Context {
	return logger.WithSessionID(ctx, s.id)
}

// RadiusSearch searches around pos unless pos is already the last requested
// position and force is false. requested selects the active facility once the
// results arrive; the first one is chosen otherwise. A result that arrives
// after another position was requested is dropped.
func (s *Session) RadiusSearch(ctx context.Context, pos model.Position, requested *model.ID, force bool) (SearchOutcome, error) {
	ctx = s.ctx(ctx)

	evs := []store.Event{store.SetLastRequest{Pos: pos}, store.ResetResults{}}
	if s.deps.ResetSideCachesOnSearch {
		evs = append(evs, store.ResetSideCaches{})
	}
	st, ok := s.store.DispatchIf(func(st *store.State) bool {
		last := st.Buffer.LastRequest
		return force || last == nil || !last.Equal(pos)
	}, evs...)
	if !ok {
		observability.IncSearch(string(SearchDuplicate))
		return SearchDuplicate, nil
	}

	opts := merge.Options{
		IncludePlacesWithoutAccessibility: st.Global.IncludePlacesWithoutAccessibility,
		IncludeRelated:                    debugging(ctx),
	}
	facilities, err := s.deps.Searcher.Search(ctx, pos, opts)
	if err != nil {
		observability.IncSearch(string(SearchFailed))
		s.logger.WarnContext(ctx, "radius search failed", "pos", pos.String(), "err", err)
		return SearchFailed, s.guard.Check(err)
	}

	index := 0
	if requested != nil {
		if i, ok := model.IndexByID(facilities, *requested); ok {
			index = i
		}
	}
	st, ok = s.store.DispatchIf(func(st *store.State) bool {
		last := st.Buffer.LastRequest
		return last != nil && last.Equal(pos)
	}, store.SearchResolved{Facilities: facilities, Current: index})
	if !ok {
		observability.IncSearch(string(SearchStale))
		s.logger.DebugContext(ctx, "dropping superseded search result", "pos", pos.String())
		return SearchStale, nil
	}
	observability.IncSearch(string(SearchApplied))

	if active, ok := st.Buffer.Results.Active(); ok {
		_ = s.fillSideCaches(ctx, active)
	}
	return SearchApplied, nil
}

// ChooseFacility makes index the active facility and fills its side caches.
func (s *Session) ChooseFacility(ctx context.Context, index int) error {
	ctx = s.ctx(ctx)
	st := s.store.Dispatch(store.ChooseFacility{Index: index})
	r := st.Buffer.Results
	if r == nil || index < 0 || index >= len(r.Facilities) {
		return ErrNoFacility
	}
	s.logger.DebugContext(ctx, "chose facility", "index", index, "id", r.Facilities[index].Features.ID.String())
	_ = s.fillSideCaches(ctx, r.Facilities[index])
	return nil
}

// Open brings the session to pos with id active, the way a reloaded client
// route does: search if pos is new, then select id when it is in the results.
func (s *Session) Open(ctx context.Context, pos model.Position, id *model.ID, force bool) (SearchOutcome, error) {
	outcome, err := s.RadiusSearch(ctx, pos, id, force)
	if err != nil || id == nil || outcome == SearchStale {
		return outcome, err
	}
	r := s.State().Buffer.Results
	_, i, ok := r.Find(*id)
	if !ok {
		return outcome, nil
	}
	if active, _ := r.Active(); outcome == SearchApplied && active.Features.ID.Equal(*id) {
		return outcome, nil
	}
	return outcome, s.ChooseFacility(ctx, i)
}

func (s *Session) SetIncludePlacesWithoutAccessibility(ctx context.Context, include bool) error {
	st := s.store.Dispatch(store.SetIncludePlacesWithoutAccessibility{Include: include})
	// an empty result set is loaded too; that is when the toggle matters most
	if st.Buffer.Results == nil || st.Buffer.LastRequest == nil {
		return nil
	}
	var requested *model.ID
	if active, ok := st.Buffer.Results.Active(); ok {
		id := active.Features.ID
		requested = &id
	}
	_, err := s.RadiusSearch(ctx, *st.Buffer.LastRequest, requested, true)
	return err
}

func (s *Session) SetFullscreen(fullscreen bool) {
	s.store.Dispatch(store.SetFullscreen{Fullscreen: fullscreen})
}

func (s *Session) facility(id model.ID) (model.Facility, error) {
	f, _, ok := s.State().Buffer.Results.Find(id)
	if !ok {
		return model.Facility{}, ErrNoFacility
	}
	return f, nil
}

// AddComment posts content for the active facility and refetches its comments.
func (s *Session) AddComment(ctx context.Context, content string) error {
	ctx = s.ctx(ctx)
	if content == "" {
		return ErrEmptyComment
	}
	f, ok := s.State().Buffer.Results.Active()
	if !ok {
		return ErrNoFacility
	}
	id := f.Features.ID
	if err := s.deps.Backend.AddComment(ctx, id, f.Features.Coord, content); err != nil {
		return s.guard.Check(fmt.Errorf("add comment: %w", err))
	}
	comments, err := s.deps.Backend.Comments(ctx, id)
	if err != nil {
		return s.guard.Check(fmt.Errorf("reload comments: %w", err))
	}
	s.store.Dispatch(store.CommentsLoaded{ID: id, Comments: comments})
	return nil
}

// UpdateFacilityData writes attrs to the backend and then replaces the
// facility's attribute set locally.
func (s *Session) UpdateFacilityData(ctx context.Context, id model.ID, attrs attributes.Set) error {
	ctx = s.ctx(ctx)
	f, err := s.facility(id)
	if err != nil {
		return err
	}
	if err := s.deps.Backend.UpdateFacility(ctx, id, f.Features.Coord, attributes.ToDatabase(attrs)); err != nil {
		return s.guard.Check(fmt.Errorf("update facility: %w", err))
	}
	s.store.Dispatch(store.AttributesUpdated{ID: id, Attributes: attrs})
	s.changed(ctx, invalidation.OpUpdate, id, f.Features.Coord)
	s.logger.InfoContext(ctx, "facility updated", "id", id.String(), "attributes", len(attrs))
	return nil
}

// CreateFacility registers a new facility. pos is nil when the client has no
// position fix.
func (s *Session) CreateFacility(ctx context.Context, name string, pos *model.Position) error {
	ctx = s.ctx(ctx)
	if name == "" {
		return ErrEmptyName
	}
	if pos == nil || !pos.Valid() {
		return ErrUnknownPosition
	}
	if err := s.deps.Backend.CreateFacility(ctx, name, *pos); err != nil {
		return s.guard.Check(fmt.Errorf("create facility: %w", err))
	}
	s.changed(ctx, invalidation.OpInsert, model.ID{}, *pos)
	s.logger.InfoContext(ctx, "facility created", "name", name, "pos", pos.String())
	return nil
}

func (s *Session) changed(ctx context.Context, op string, id model.ID, pos model.Position) {
	if s.deps.Changes != nil {
		s.deps.Changes.FacilityChanged(ctx, op, id, pos)
	}
}

// WillVisit records that the user navigates to id from a search at search.
func (s *Session) WillVisit(ctx context.Context, id model.ID, search model.Position) error {
	ctx = s.ctx(ctx)
	if s.deps.Visits != nil {
		s.deps.Visits.Publish(visitevents.Event{
			ID:        id,
			SearchLat: search.Lat,
			SearchLon: search.Lon,
			Radius:    merge.Radius,
			SessionID: s.id,
			TS:        time.Now().UTC(),
		})
	}
	if err := s.deps.Backend.WillVisit(ctx, id, search); err != nil {
		return s.guard.Check(fmt.Errorf("will visit: %w", err))
	}
	return nil
}

func (s *Session) FlagImage(ctx context.Context, id model.ID, imageID string) error {
	if err := s.deps.Backend.FlagImage(s.ctx(ctx), id, imageID); err != nil {
		return s.guard.Check(fmt.Errorf("flag image: %w", err))
	}
	return nil
}

// UploadImage shrinks the photo in r and uploads it for facility id. The
// gallery is not refetched.
func (s *Session) UploadImage(ctx context.Context, id model.ID, r io.Reader) error {
	ctx = s.ctx(ctx)
	f, err := s.facility(id)
	if err != nil {
		return err
	}
	jpeg, err := gallery.Prepare(r)
	if err != nil {
		return err
	}
	if err := s.deps.Backend.UploadImage(ctx, id, f.Features.Coord, jpeg); err != nil {
		return s.guard.Check(fmt.Errorf("upload image: %w", err))
	}
	return nil
}

type Detail struct {
	Index    int             `json:"index"`
	Facility model.Facility  `json:"facility"`
	Images   []string        `json:"images"`
	Comments []model.Comment `json:"comments"`
	// Address is nil when none was found or the lookup is pending.
	Address *string `json:"address"`
	// Pending lists the side caches that could not be filled yet.
	Pending []string `json:"pending,omitempty"`
}

// Detail returns facility id with its side caches, filling any that are
// missing. A failed fill is reported through Pending, not as an error.
func (s *Session) Detail(ctx context.Context, id model.ID) (Detail, error) {
	ctx = s.ctx(ctx)
	f, err := s.facility(id)
	if err != nil {
		return Detail{}, err
	}
	_ = s.fillSideCaches(ctx, f)

	st := s.State()
	_, i, _ := st.Buffer.Results.Find(id)
	key := model.IDToStr(id)
	d := Detail{
		Index:    i,
		Facility: f,
		Images:   st.Buffer.Images[key],
		Comments: st.Buffer.Comments[key],
		Address:  st.Buffer.Addresses[key],
	}
	if !st.HasImages(id) {
		d.Pending = append(d.Pending, "images")
	}
	if !st.HasComments(id) {
		d.Pending = append(d.Pending, "comments")
	}
	if !st.HasAddress(id) {
		d.Pending = append(d.Pending, "address")
	}
	return d, nil
}

// fillSideCaches loads whichever of images, comments and address are missing
// for f. Fills run concurrently and are not cancelled with the request.
func (s *Session) fillSideCaches(ctx context.Context, f model.Facility) error {
	ctx = context.WithoutCancel(ctx)
	id := f.Features.ID

	var wg sync.WaitGroup
	errs := make([]error, 3)
	wg.Add(3)
	go func() {
		defer wg.Done()
		errs[0] = s.ensure(ctx, "images", id, (*store.State).HasImages, func(ctx context.Context) (store.Event, error) {
			urls, err := s.deps.Images.Images(ctx, id)
			return store.ImagesLoaded{ID: id, URLs: urls}, err
		})
	}()
	go func() {
		defer wg.Done()
		errs[1] = s.ensure(ctx, "comments", id, (*store.State).HasComments, func(ctx context.Context) (store.Event, error) {
			cs, err := s.deps.Backend.Comments(ctx, id)
			return store.CommentsLoaded{ID: id, Comments: cs}, err
		})
	}()
	go func() {
		defer wg.Done()
		errs[2] = s.ensure(ctx, "addresses", id, (*store.State).HasAddress, func(ctx context.Context) (store.Event, error) {
			addr, err := s.deps.Geocoder.Reverse(ctx, f.Features.Coord)
			return store.AddressLoaded{ID: id, Address: addr}, err
		})
	}()
	wg.Wait()

	err := errors.Join(errs...)
	if err != nil {
		s.logger.WarnContext(ctx, "side cache fill failed", "id", id.String(), "err", err)
	}
	return err
}

// ensure runs load once per kind and id unless the cache already holds it.
// Concurrent misses share one call.
func (s *Session) ensure(ctx context.Context, kind string, id model.ID, has func(*store.State, model.ID) bool, load func(context.Context) (store.Event, error)) error {
	if has(s.State(), id) {
		observability.IncSideCacheHit(kind)
		return nil
	}
	_, err, _ := s.fills.Do(kind+"|"+model.IDToStr(id), func() (any, error) {
		if has(s.State(), id) {
			return nil, nil
		}
		observability.IncSideCacheMiss(kind)
		ev, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", kind, err)
		}
		s.store.Dispatch(ev)
		return nil, nil
	})
	return s.guard.Check(err)
}
