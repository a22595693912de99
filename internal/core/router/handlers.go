package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tonari-app/tonari/internal/attributes"
	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/gesture"
	"github.com/tonari-app/tonari/internal/mapsurl"
	"github.com/tonari-app/tonari/internal/route"
	"github.com/tonari-app/tonari/internal/session"
	"github.com/tonari-app/tonari/internal/store"
)

// badges shown per list entry
const badgeLimit = 4

type appView struct {
	Flags  route.Flags      `json:"flags"`
	Menu   []route.MenuItem `json:"menu"`
	Notice string           `json:"notice,omitempty"`
	Input  string           `json:"input"`
	Events gesture.Bindings `json:"events"`
}

func (a *API) handleApp(w http.ResponseWriter, r *http.Request) {
	flags := route.FlagsFrom(r.URL.Query())
	touchPoints, _ := strconv.Atoi(r.URL.Query().Get("maxTouchPoints"))
	src := gesture.DetectSource(r.UserAgent(), touchPoints)
	v := appView{
		Flags:  flags,
		Menu:   route.Menu(flags),
		Input:  src.String(),
		Events: gesture.BindingsFor(src),
	}
	if a.cfg.OverrideLocation != "" {
		v.Notice = route.MsgOverride
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) handleAttributes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"catalog":  attributes.Catalog(),
		"editable": attributes.Editable(),
	})
}

type stateView struct {
	State   *store.State `json:"state"`
	Loading bool         `json:"loading"`
	Alerts  []string     `json:"alerts,omitempty"`
}

func (a *API) handleState(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	st := s.State()
	writeJSON(w, http.StatusOK, stateView{State: st, Loading: st.Loading(), Alerts: s.TakeAlerts()})
}

type settingsBody struct {
	IncludePlacesWithoutAccessibility *bool `json:"includePlacesWithoutAccessibility"`
	Fullscreen                        *bool `json:"fullscreen"`
}

func (a *API) handleSettings(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	var body settingsBody
	if err := decodeJSON(r, &body); err != nil {
		a.fail(w, r, err)
		return
	}
	if body.Fullscreen != nil {
		s.SetFullscreen(*body.Fullscreen)
	}
	if body.IncludePlacesWithoutAccessibility != nil {
		if err := s.SetIncludePlacesWithoutAccessibility(r.Context(), *body.IncludePlacesWithoutAccessibility); err != nil {
			a.fail(w, r, err)
			return
		}
	}
	a.handleState(w, r)
}

// handleNowGPS resolves the search position from the configured override or
// the lat/lon fix and redirects to its result set.
func (a *API) handleNowGPS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var fix *model.Position
	if q.Has("lat") || q.Has("lon") {
		p := model.PositionFromStr(q.Get("lat") + "_" + q.Get("lon"))
		if !p.Valid() {
			a.fail(w, r, badRequest("%s", route.MsgAllowLocation))
			return
		}
		fix = &p
	}
	target, ok := route.NowTarget(a.cfg.OverrideLocation, fix)
	if !ok {
		writeJSON(w, http.StatusAccepted, map[string]string{
			"screen":  string(route.NowGPS),
			"message": route.MsgWaitLocation,
		})
		return
	}
	q.Del("lat")
	q.Del("lon")
	loc := strings.TrimSuffix(r.URL.Path, "/now") + target
	if len(q) > 0 {
		loc += "?" + q.Encode()
	}
	http.Redirect(w, r, loc, http.StatusFound)
}

func (a *API) handleLater(w http.ResponseWriter, r *http.Request) {
	a.fail(w, r, route.Available(route.Later, route.FlagsFrom(r.URL.Query())))
}

type addBody struct {
	Name     string          `json:"name"`
	Position *model.Position `json:"position"`
}

func (a *API) handleAdd(w http.ResponseWriter, r *http.Request) {
	if err := route.Available(route.Add, route.FlagsFrom(r.URL.Query())); err != nil {
		a.fail(w, r, err)
		return
	}
	var body addBody
	if err := decodeJSON(r, &body); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := sessionFrom(r.Context()).CreateFacility(r.Context(), strings.TrimSpace(body.Name), body.Position); err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"next": route.Build(route.Route{Screen: route.Startup})})
}

func (a *API) handleGestureReplay(w http.ResponseWriter, r *http.Request) {
	if !route.FlagsFrom(r.URL.Query()).Debugging {
		a.fail(w, r, route.ErrNotFound)
		return
	}
	var rec gesture.Recording
	if err := decodeJSON(r, &rec); err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := rec.Run()
	if err != nil {
		a.fail(w, r, badRequest("%v", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// screenRoute parses the client route the request path ends in.
func screenRoute(r *http.Request) (route.Route, error) {
	p := r.URL.EscapedPath()
	i := strings.Index(p, "/now/")
	if i < 0 {
		return route.Route{}, route.ErrNotFound
	}
	rt, err := route.Parse(p[i:])
	if err != nil {
		return route.Route{}, err
	}
	if !rt.Pos.Valid() {
		return route.Route{}, badRequest("invalid position %q", chiParam(r, "pos"))
	}
	return rt, nil
}

// open brings the session to rt the way a client navigating there would.
func (a *API) open(r *http.Request, rt route.Route) (session.SearchOutcome, error) {
	var id *model.ID
	switch {
	case rt.Screen != route.Now:
		id = &rt.ID
	case r.URL.Query().Get("id") != "":
		req := model.IDFromStr(r.URL.Query().Get("id"))
		id = &req
	}
	return sessionFrom(r.Context()).Open(r.Context(), rt.Pos, id, r.URL.Query().Has("force"))
}

func (a *API) handleScreen(w http.ResponseWriter, r *http.Request) {
	rt, err := screenRoute(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	outcome, err := a.open(r, rt)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	switch rt.Screen {
	case route.Now:
		writeJSON(w, http.StatusOK, a.resultsView(r, rt.Pos, outcome))
	case route.Detail:
		a.writeDetail(w, r, rt)
	case route.Edit, route.GoEdit:
		a.writeEdit(w, r, rt)
	case route.Go:
		a.writeGo(w, r, rt)
	default:
		a.fail(w, r, route.ErrNotFound)
	}
}

type listItem struct {
	model.Facility
	Badges []attributes.Badge `json:"badges"`
	Path   string             `json:"path"`
}

type resultsView struct {
	Outcome    session.SearchOutcome `json:"outcome"`
	Loading    bool                  `json:"loading"`
	Position   model.Position        `json:"position"`
	Current    int                   `json:"current"`
	Facilities []listItem            `json:"facilities"`
	Message    string                `json:"message,omitempty"`
	Notice     string                `json:"notice,omitempty"`
	Alerts     []string              `json:"alerts,omitempty"`
}

func (a *API) resultsView(r *http.Request, pos model.Position, outcome session.SearchOutcome) resultsView {
	s := sessionFrom(r.Context())
	st := s.State()
	v := resultsView{
		Outcome:    outcome,
		Loading:    st.Loading(),
		Position:   pos,
		Facilities: []listItem{},
		Alerts:     s.TakeAlerts(),
	}
	if a.cfg.OverrideLocation != "" {
		v.Notice = route.MsgOverride
	}
	if res := st.Buffer.Results; res != nil {
		v.Current = res.Current
		for _, f := range res.Facilities {
			v.Facilities = append(v.Facilities, listItem{
				Facility: f,
				Badges:   attributes.Summary(f.Attributes, badgeLimit),
				Path:     route.Build(route.Route{Screen: route.Detail, Pos: pos, ID: f.Features.ID}),
			})
		}
		if len(res.Facilities) == 0 {
			v.Message = route.MsgNoResults
		}
	}
	return v
}

type detailView struct {
	session.Detail
	Badges   []attributes.Badge `json:"badges"`
	EditPath string             `json:"editPath"`
	GoPath   string             `json:"goPath"`
	Alerts   []string           `json:"alerts,omitempty"`
}

func (a *API) writeDetail(w http.ResponseWriter, r *http.Request, rt route.Route) {
	s := sessionFrom(r.Context())
	d, err := s.Detail(r.Context(), rt.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailView{
		Detail:   d,
		Badges:   attributes.Summary(d.Facility.Attributes, 0),
		EditPath: route.Build(route.Route{Screen: route.Edit, Pos: rt.Pos, ID: rt.ID}),
		GoPath:   route.Build(route.Route{Screen: route.Go, Pos: rt.Pos, ID: rt.ID}),
		Alerts:   s.TakeAlerts(),
	})
}

type editView struct {
	Facility model.Facility          `json:"facility"`
	Fields   []attributes.Descriptor `json:"fields"`
	Return   string                  `json:"return"`
}

func (a *API) writeEdit(w http.ResponseWriter, r *http.Request, rt route.Route) {
	f, _, ok := sessionFrom(r.Context()).State().Buffer.Results.Find(rt.ID)
	if !ok {
		a.fail(w, r, session.ErrNoFacility)
		return
	}
	writeJSON(w, http.StatusOK, editView{
		Facility: f,
		Fields:   attributes.Editable(),
		Return:   route.Build(route.EditReturn(rt)),
	})
}

type goView struct {
	Facility model.Facility `json:"facility"`
	Maps     mapsurl.Link   `json:"maps"`
	EditPath string         `json:"editPath"`
	Alerts   []string       `json:"alerts,omitempty"`
}

// writeGo answers with the navigation link and records the visit. A failed
// visit record does not hold back the link.
func (a *API) writeGo(w http.ResponseWriter, r *http.Request, rt route.Route) {
	s := sessionFrom(r.Context())
	f, _, ok := s.State().Buffer.Results.Find(rt.ID)
	if !ok {
		a.fail(w, r, session.ErrNoFacility)
		return
	}
	if err := s.WillVisit(r.Context(), rt.ID, rt.Pos); err != nil {
		a.logger.WarnContext(r.Context(), "will visit failed", "id", rt.ID.String(), "err", err)
	}
	writeJSON(w, http.StatusOK, goView{
		Facility: f,
		Maps:     mapsurl.For(r.UserAgent(), f.Features.Coord, f.Features.Name),
		EditPath: route.Build(route.Route{Screen: route.GoEdit, Pos: rt.Pos, ID: rt.ID}),
		Alerts:   s.TakeAlerts(),
	})
}

type chooseBody struct {
	Index int `json:"index"`
}

func (a *API) handleChoose(w http.ResponseWriter, r *http.Request) {
	pos := model.PositionFromStr(chiParam(r, "pos"))
	if !pos.Valid() {
		a.fail(w, r, badRequest("invalid position %q", chiParam(r, "pos")))
		return
	}
	rt := route.Route{Screen: route.Now, Pos: pos}
	var body chooseBody
	if err := decodeJSON(r, &body); err != nil {
		a.fail(w, r, err)
		return
	}
	outcome, err := a.open(r, rt)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := sessionFrom(r.Context()).ChooseFacility(r.Context(), body.Index); err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.resultsView(r, rt.Pos, outcome))
}

// facilityRoute is the Detail route of a facility action such as
// /now/{pos}/{id}/comments.
func facilityRoute(r *http.Request) (route.Route, error) {
	pos := model.PositionFromStr(chiParam(r, "pos"))
	if !pos.Valid() {
		return route.Route{}, badRequest("invalid position %q", chiParam(r, "pos"))
	}
	id := model.IDFromStr(chiParam(r, "id"))
	if id.IsZero() {
		return route.Route{}, route.ErrNotFound
	}
	return route.Route{Screen: route.Detail, Pos: pos, ID: id}, nil
}

// openFacility resolves the facility route and makes its facility active.
func (a *API) openFacility(w http.ResponseWriter, r *http.Request) (route.Route, bool) {
	rt, err := facilityRoute(r)
	if err == nil {
		_, err = a.open(r, rt)
	}
	if err != nil {
		a.fail(w, r, err)
		return route.Route{}, false
	}
	return rt, true
}

func (a *API) handleEdit(w http.ResponseWriter, r *http.Request) {
	rt, err := screenRoute(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var attrs attributes.Set
	if err := decodeJSON(r, &attrs); err != nil {
		a.fail(w, r, err)
		return
	}
	if _, err := a.open(r, rt); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := sessionFrom(r.Context()).UpdateFacilityData(r.Context(), rt.ID, attrs); err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"next": route.Build(route.EditReturn(rt))})
}

type commentBody struct {
	Content string `json:"content"`
}

func (a *API) handleComment(w http.ResponseWriter, r *http.Request) {
	var body commentBody
	if err := decodeJSON(r, &body); err != nil {
		a.fail(w, r, err)
		return
	}
	rt, ok := a.openFacility(w, r)
	if !ok {
		return
	}
	if err := sessionFrom(r.Context()).AddComment(r.Context(), strings.TrimSpace(body.Content)); err != nil {
		a.fail(w, r, err)
		return
	}
	a.writeDetail(w, r, rt)
}

func (a *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("image")
	if err != nil {
		a.fail(w, r, badRequest("read upload: %v", err))
		return
	}
	defer func() { _ = file.Close() }()

	rt, ok := a.openFacility(w, r)
	if !ok {
		return
	}
	if err := sessionFrom(r.Context()).UploadImage(r.Context(), rt.ID, file); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type flagBody struct {
	ImageID string `json:"imageId"`
}

func (a *API) handleFlag(w http.ResponseWriter, r *http.Request) {
	var body flagBody
	if err := decodeJSON(r, &body); err != nil {
		a.fail(w, r, err)
		return
	}
	if body.ImageID == "" {
		a.fail(w, r, badRequest("missing imageId"))
		return
	}
	rt, err := facilityRoute(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := sessionFrom(r.Context()).FlagImage(r.Context(), rt.ID, body.ImageID); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
