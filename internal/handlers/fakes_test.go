package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"stichting-asha/internal/middleware"
	"stichting-asha/internal/models"
	"stichting-asha/internal/store"
	"stichting-asha/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func nullLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

// testServer mounts api behind the real session middleware.
type testServer struct {
	t      *testing.T
	jwt    *auth.JWTManager
	router *gin.Engine
}

func newTestServer(t *testing.T, api *API) *testServer {
	t.Helper()
	jwt := auth.NewJWTManager("test-secret", time.Hour)
	log := nullLogger()

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(log))
	group := r.Group("/api", middleware.Authenticate(jwt, log))
	api.Register(group)
	api.RegisterProbes(r)

	return &testServer{t: t, jwt: jwt, router: r}
}

func (s *testServer) token(role models.Role) string {
	s.t.Helper()
	token, err := s.jwt.GenerateToken(auth.Session{UserID: "u1", Name: "Test Beheerder", Email: "test@example.org", Role: role})
	require.NoError(s.t, err)
	return token
}

// do sends body as JSON. An empty role sends no token.
func (s *testServer) do(method, path string, role models.Role, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return s.send(req, role)
}

func (s *testServer) send(req *http.Request, role models.Role) *httptest.ResponseRecorder {
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(role))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

type recorded struct {
	Kind       models.ActivityType
	EntityType string
	EntityID   string
	EntityName string
	By         string
}

type fakeActivity struct {
	mu      sync.Mutex
	entries []recorded
}

func (f *fakeActivity) Record(_ context.Context, s *auth.Session, kind models.ActivityType, entityType, entityID, entityName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, recorded{kind, entityType, entityID, entityName, s.DisplayName()})
}

func (f *fakeActivity) all() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.entries...)
}

// fakeEvents implements both EventRepository and OccurrenceRepository.
type fakeEvents struct {
	mu     sync.Mutex
	events map[string]models.Event
	err    error

	// insertLimit > 0 makes InsertMany store that many events and then
	// fail, like an ordered bulk insert that hits an error midway.
	insertLimit int
}

func newFakeEvents(events ...models.Event) *fakeEvents {
	f := &fakeEvents{events: make(map[string]models.Event)}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return f
}

func (f *fakeEvents) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func (f *fakeEvents) sorted(keep func(models.Event) bool) []models.Event {
	out := []models.Event{}
	for _, e := range f.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeEvents) List(context.Context) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.sorted(func(models.Event) bool { return true }), nil
}

func (f *fakeEvents) ListBySeries(_ context.Context, seriesID string) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(e models.Event) bool { return e.SeriesID == seriesID }), nil
}

func (f *fakeEvents) Get(_ context.Context, id string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &e, nil
}

func (f *fakeEvents) Insert(_ context.Context, e *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == "" {
		e.ID = primitive.NewObjectID().Hex()
	}
	f.events[e.ID] = *e
	return nil
}

func (f *fakeEvents) InsertMany(_ context.Context, events []models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, e := range events {
		if f.insertLimit > 0 && i == f.insertLimit {
			return fmt.Errorf("insert events: write %d failed", i)
		}
		f.events[e.ID] = e
	}
	return nil
}

func (f *fakeEvents) Replace(_ context.Context, e *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[e.ID]; !ok {
		return store.ErrNotFound
	}
	f.events[e.ID] = *e
	return nil
}

func (f *fakeEvents) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEvents) UpdateSeries(_ context.Context, seriesID string, fields models.SharedFields) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, e := range f.events {
		if e.SeriesID != seriesID {
			continue
		}
		e.Title = fields.Title
		e.Description = fields.Description
		e.StartTime = fields.StartTime
		e.EndTime = fields.EndTime
		e.Time = fields.Time
		e.Location = fields.Location
		e.Zaal = fields.Zaal
		e.UpdatedAt = fields.UpdatedAt
		f.events[id] = e
		n++
	}
	return n, nil
}

func (f *fakeEvents) DeleteSeries(_ context.Context, seriesID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, e := range f.events {
		if e.SeriesID == seriesID {
			delete(f.events, id)
			n++
		}
	}
	return n, nil
}

type fakeSeries struct {
	mu     sync.Mutex
	series map[string]models.Series
}

func (f *fakeSeries) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.series)
}

func newFakeSeries() *fakeSeries {
	return &fakeSeries{series: make(map[string]models.Series)}
}

func (f *fakeSeries) Get(_ context.Context, id string) (*models.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.series[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (f *fakeSeries) Insert(_ context.Context, s *models.Series) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.series[s.ID] = *s
	return nil
}

func (f *fakeSeries) Replace(_ context.Context, s *models.Series) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.series[s.ID]; !ok {
		return store.ErrNotFound
	}
	f.series[s.ID] = *s
	return nil
}

func (f *fakeSeries) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.series[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.series, id)
	return nil
}

// docs is an in-memory collection keyed by ObjectID, used by the fakes of
// the ObjectID entities.
type docs[T any] struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]T
	order []primitive.ObjectID
}

func newDocs[T any]() *docs[T] {
	return &docs[T]{items: make(map[primitive.ObjectID]T)}
}

func (d *docs[T]) get(id string) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero T
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return zero, store.ErrNotFound
	}
	v, ok := d.items[oid]
	if !ok {
		return zero, store.ErrNotFound
	}
	return v, nil
}

func (d *docs[T]) put(id primitive.ObjectID, v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.items[id]; !ok {
		d.order = append(d.order, id)
	}
	d.items[id] = v
}

func (d *docs[T]) replace(id primitive.ObjectID, v T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.items[id]; !ok {
		return store.ErrNotFound
	}
	d.items[id] = v
	return nil
}

func (d *docs[T]) remove(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}
	if _, ok := d.items[oid]; !ok {
		return store.ErrNotFound
	}
	delete(d.items, oid)
	for i, o := range d.order {
		if o == oid {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

// list returns items newest insert first.
func (d *docs[T]) list() []T {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]T, 0, len(d.order))
	for i := len(d.order) - 1; i >= 0; i-- {
		out = append(out, d.items[d.order[i]])
	}
	return out
}

func (d *docs[T]) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

type fakeProjects struct{ *docs[models.Project] }

func (f fakeProjects) List(context.Context) ([]models.Project, error) { return f.list(), nil }
func (f fakeProjects) Get(_ context.Context, id string) (*models.Project, error) {
	p, err := f.get(id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
func (f fakeProjects) Insert(_ context.Context, p *models.Project) error {
	p.ID = primitive.NewObjectID()
	f.put(p.ID, *p)
	return nil
}
func (f fakeProjects) Replace(_ context.Context, p *models.Project) error { return f.replace(p.ID, *p) }
func (f fakeProjects) Delete(_ context.Context, id string) error          { return f.remove(id) }

type fakeVolunteers struct{ *docs[models.Volunteer] }

func (f fakeVolunteers) List(_ context.Context, status string) ([]models.Volunteer, error) {
	out := []models.Volunteer{}
	for _, v := range f.list() {
		if status == "" || status == "all" || string(v.Status) == status {
			if v.CV != nil {
				cv := *v.CV
				cv.Data = ""
				v.CV = &cv
			}
			if v.MotivationLetter != nil {
				letter := *v.MotivationLetter
				letter.Data = ""
				v.MotivationLetter = &letter
			}
			out = append(out, v)
		}
	}
	return out, nil
}
func (f fakeVolunteers) Get(_ context.Context, id string) (*models.Volunteer, error) {
	v, err := f.get(id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
func (f fakeVolunteers) Insert(_ context.Context, v *models.Volunteer) error {
	v.ID = primitive.NewObjectID()
	f.put(v.ID, *v)
	return nil
}
func (f fakeVolunteers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, v := range f.list() {
		if v.Email == email {
			return true, nil
		}
	}
	return false, nil
}
func (f fakeVolunteers) SetStatus(_ context.Context, id string, status models.VolunteerStatus) (*models.Volunteer, error) {
	v, err := f.get(id)
	if err != nil {
		return nil, err
	}
	v.Status = status
	if err := f.replace(v.ID, v); err != nil {
		return nil, err
	}
	return &v, nil
}
func (f fakeVolunteers) Delete(_ context.Context, id string) error { return f.remove(id) }

type fakeNotices struct{ *docs[models.Notice] }

func (f fakeNotices) List(context.Context) ([]models.Notice, error) { return f.list(), nil }
func (f fakeNotices) Active(_ context.Context, now time.Time) ([]models.Notice, error) {
	out := []models.Notice{}
	for _, n := range f.list() {
		if n.IsActive && n.ExpirationDate.After(now) {
			out = append(out, n)
		}
	}
	return out, nil
}
func (f fakeNotices) Get(_ context.Context, id string) (*models.Notice, error) {
	n, err := f.get(id)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
func (f fakeNotices) Insert(_ context.Context, n *models.Notice) error {
	n.ID = primitive.NewObjectID()
	f.put(n.ID, *n)
	return nil
}
func (f fakeNotices) Replace(_ context.Context, n *models.Notice) error { return f.replace(n.ID, *n) }
func (f fakeNotices) Delete(_ context.Context, id string) error         { return f.remove(id) }

type fakeNewsletter struct{ *docs[models.NewsletterPost] }

func (f fakeNewsletter) List(_ context.Context, field string, ascending bool) ([]models.NewsletterPost, error) {
	posts := f.list()
	sort.SliceStable(posts, func(i, j int) bool {
		less := posts[i].CreatedAt.Before(posts[j].CreatedAt)
		if field == "title" {
			less = posts[i].Title < posts[j].Title
		}
		if ascending {
			return less
		}
		return !less
	})
	return posts, nil
}
func (f fakeNewsletter) Get(_ context.Context, id string) (*models.NewsletterPost, error) {
	p, err := f.get(id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
func (f fakeNewsletter) Insert(_ context.Context, p *models.NewsletterPost) error {
	p.ID = primitive.NewObjectID()
	f.put(p.ID, *p)
	return nil
}
func (f fakeNewsletter) Replace(_ context.Context, p *models.NewsletterPost) error {
	return f.replace(p.ID, *p)
}
func (f fakeNewsletter) Delete(_ context.Context, id string) error { return f.remove(id) }

type fakeActivities struct {
	items     []models.Activity
	lastLimit int
}

func (f *fakeActivities) Recent(_ context.Context, limit int) ([]models.Activity, error) {
	f.lastLimit = limit
	if limit > len(f.items) {
		limit = len(f.items)
	}
	return f.items[:limit], nil
}

type fakeUsers struct {
	mu        sync.Mutex
	users     map[string]models.User
	passwords map[string]string
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{users: make(map[string]models.User), passwords: make(map[string]string)}
	for _, u := range users {
		f.users[u.Email] = u
	}
	return f
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, email, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return store.ErrNotFound
	}
	u.Password = hash
	f.users[email] = u
	f.passwords[email] = hash
	return nil
}

type fakeResets struct {
	mu     sync.Mutex
	resets []models.PasswordReset
}

func (f *fakeResets) Insert(_ context.Context, r *models.PasswordReset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = primitive.NewObjectID()
	f.resets = append(f.resets, *r)
	return nil
}

func (f *fakeResets) FindValid(_ context.Context, token string, now time.Time) (*models.PasswordReset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.resets {
		if r.Token == token && r.Usable(now) {
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeResets) Claim(_ context.Context, token string, now time.Time) (*models.PasswordReset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.resets {
		if f.resets[i].Token == token && f.resets[i].Usable(now) {
			f.resets[i].Used = true
			r := f.resets[i]
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeResets) Release(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.resets {
		if f.resets[i].ID == id {
			f.resets[i].Used = false
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeMailer struct {
	mu        sync.Mutex
	resets    []string
	decisions []models.VolunteerStatus
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, _ *models.User, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, token)
	return nil
}

func (f *fakeMailer) SendVolunteerDecision(_ context.Context, v *models.Volunteer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, v.Status)
	return nil
}
