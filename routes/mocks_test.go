package routes

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"rsvpapp/models"
	"rsvpapp/utils"
)

// tickClock hands out strictly increasing timestamps so submission order
// is deterministic across the mocks.
type tickClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type mockUserRepo struct {
	nextID    int64
	byID      map[int64]models.User
	passwords map[string]string
}

func (m *mockUserRepo) Create(u *models.User, password string) error {
	for _, ex := range m.byID {
		if ex.Email == u.Email || ex.Username == u.Username {
			return models.ErrDuplicate
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.Role = models.RoleUser
	u.CreatedAt = time.Now()
	m.byID[u.ID] = *u
	m.passwords[u.Email] = password
	return nil
}

func (m *mockUserRepo) ValidateCredentials(email, plain string) (models.User, error) {
	for _, u := range m.byID {
		if u.Email == email && m.passwords[email] == plain {
			return u, nil
		}
	}
	return models.User{}, models.ErrInvalidCredentials
}

func (m *mockUserRepo) GetByID(id int64) (models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

type mockEventRepo struct {
	nextID int64
	events map[int64]models.Event
	clock  *tickClock
}

func (m *mockEventRepo) Create(e *models.Event) error {
	m.nextID++
	e.ID = m.nextID
	e.Status = models.EventStatusActive
	e.CreatedAt = m.clock.next()
	e.UpdatedAt = e.CreatedAt
	m.events[e.ID] = *e
	return nil
}

func (m *mockEventRepo) GetByID(id int64) (models.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return models.Event{}, models.ErrNotFound
	}
	return e, nil
}

func (m *mockEventRepo) sorted() []models.Event {
	out := make([]models.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	return out
}

func pageSlice[T any](rows []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(rows) {
		return []T{}
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func (m *mockEventRepo) List(opts models.EventListOptions) ([]models.Event, int, error) {
	matched := make([]models.Event, 0)
	needle := strings.ToLower(opts.Search)
	for _, e := range m.sorted() {
		if opts.Status != "" && e.Status != opts.Status {
			continue
		}
		if needle != "" {
			hay := strings.ToLower(e.Title + " " + e.Description + " " + e.Location)
			if !strings.Contains(hay, needle) {
				continue
			}
		}
		matched = append(matched, e)
	}
	return pageSlice(matched, opts.Page, opts.Limit), len(matched), nil
}

func (m *mockEventRepo) ListByOwner(userID int64, page, limit int) ([]models.Event, int, error) {
	owned := make([]models.Event, 0)
	for _, e := range m.sorted() {
		if e.CreatedBy == userID {
			owned = append(owned, e)
		}
	}
	return pageSlice(owned, page, limit), len(owned), nil
}

func (m *mockEventRepo) Update(id int64, upd models.EventUpdate) error {
	e, ok := m.events[id]
	if !ok {
		return models.ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.EventDate != nil {
		e.EventDate = *upd.EventDate
	}
	if upd.Location != nil {
		e.Location = *upd.Location
	}
	if upd.MaxAttendees != nil {
		e.MaxAttendees = upd.MaxAttendees
	}
	if upd.Status != nil {
		e.Status = *upd.Status
	}
	if upd.IsPublic != nil {
		e.IsPublic = *upd.IsPublic
	}
	if upd.AllowComments != nil {
		e.AllowComments = *upd.AllowComments
	}
	if upd.TrackDietary != nil {
		e.TrackDietary = *upd.TrackDietary
	}
	e.UpdatedAt = m.clock.next()
	m.events[id] = e
	return nil
}

func (m *mockEventRepo) Cancel(id int64) error {
	e, ok := m.events[id]
	if !ok {
		return models.ErrNotFound
	}
	e.Status = models.EventStatusCancelled
	e.UpdatedAt = m.clock.next()
	m.events[id] = e
	return nil
}

type mockGuestRepo struct {
	nextID int64
	rows   []models.GuestRSVP
	clock  *tickClock
}

func (m *mockGuestRepo) Create(g *models.GuestRSVP) error {
	m.nextID++
	g.ID = m.nextID
	g.CreatedAt = m.clock.next()
	g.UpdatedAt = g.CreatedAt
	m.rows = append(m.rows, *g)
	return nil
}

type mockRSVPRepo struct {
	nextID int64
	rows   map[int64]models.RSVP
	byKey  map[[2]int64]int64
	guests *mockGuestRepo
	clock  *tickClock
}

func (m *mockRSVPRepo) Upsert(r *models.RSVP) (bool, error) {
	key := [2]int64{r.EventID, r.UserID}
	if id, ok := m.byKey[key]; ok {
		existing := m.rows[id]
		r.ID = id
		r.CreatedAt = existing.CreatedAt
		r.UpdatedAt = m.clock.next()
		m.rows[id] = *r
		return false, nil
	}
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt = m.clock.next()
	r.UpdatedAt = r.CreatedAt
	m.rows[r.ID] = *r
	m.byKey[key] = r.ID
	return true, nil
}

func (m *mockRSVPRepo) GetByID(id int64) (models.RSVP, error) {
	r, ok := m.rows[id]
	if !ok {
		return models.RSVP{}, models.ErrNotFound
	}
	return r, nil
}

func (m *mockRSVPRepo) UpdateStatus(id int64, status, notes string) error {
	r, ok := m.rows[id]
	if !ok {
		return models.ErrNotFound
	}
	r.Status = status
	r.Notes = notes
	r.UpdatedAt = m.clock.next()
	m.rows[id] = r
	return nil
}

func (m *mockRSVPRepo) ListByUser(userID int64, page, limit int) ([]models.RSVP, int, error) {
	mine := make([]models.RSVP, 0)
	for _, r := range m.rows {
		if r.UserID == userID {
			mine = append(mine, r)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.Before(mine[j].CreatedAt) })
	return pageSlice(mine, page, limit), len(mine), nil
}

func (m *mockRSVPRepo) ListAttendees(eventID int64) ([]models.Attendee, error) {
	out := make([]models.Attendee, 0)
	for _, r := range m.rows {
		if r.EventID != eventID {
			continue
		}
		out = append(out, models.Attendee{
			ID:                  r.ID,
			Kind:                models.AttendeeKindRegistered,
			DisplayName:         "user-" + strconv.FormatInt(r.UserID, 10),
			Status:              r.Status,
			DietaryRestrictions: r.DietaryRestrictions,
			PlusOne:             r.PlusOne,
			PlusOneName:         r.PlusOneName,
			Notes:               r.Notes,
			CreatedAt:           r.CreatedAt,
		})
	}
	for _, g := range m.guests.rows {
		if g.EventID != eventID {
			continue
		}
		out = append(out, models.Attendee{
			ID:                  g.ID,
			Kind:                models.AttendeeKindGuest,
			DisplayName:         g.Name,
			Email:               g.Email,
			Status:              g.Status,
			DietaryRestrictions: g.DietaryRestrictions,
			PlusOne:             g.PlusOne,
			PlusOneName:         g.PlusOneName,
			Notes:               g.Notes,
			CreatedAt:           g.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type mockMirror struct {
	mu         sync.Mutex
	workspaces []int64
	refreshes  []int64
}

func (m *mockMirror) ScheduleWorkspace(eventID int64, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workspaces = append(m.workspaces, eventID)
}

func (m *mockMirror) ScheduleRefresh(eventID int64, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes = append(m.refreshes, eventID)
}

func (m *mockMirror) refreshCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.refreshes)
}

type testEnv struct {
	users  *mockUserRepo
	events *mockEventRepo
	rsvps  *mockRSVPRepo
	guests *mockGuestRepo
	mirror *mockMirror
}

func newTestServer(t *testing.T) (*gin.Engine, *testEnv) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	clock := &tickClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	env := &testEnv{
		users:  &mockUserRepo{byID: map[int64]models.User{}, passwords: map[string]string{}},
		events: &mockEventRepo{events: map[int64]models.Event{}, clock: clock},
		guests: &mockGuestRepo{clock: clock},
		mirror: &mockMirror{},
	}
	env.rsvps = &mockRSVPRepo{
		rows:   map[int64]models.RSVP{},
		byKey:  map[[2]int64]int64{},
		guests: env.guests,
		clock:  clock,
	}

	r := gin.New()
	inv := utils.NewCacheInvalidator(rdb)
	RegisterRoutes(r, env.users, env.events, env.rsvps, env.guests, rdb, inv, env.mirror)
	return r, env
}

// seedUser registers a user directly against the repository and returns a
// valid token, bypassing the credential endpoints and their rate limits.
func (e *testEnv) seedUser(t *testing.T, username, role string) (models.User, string) {
	t.Helper()
	u := models.User{Username: username, Email: username + "@test.local"}
	if err := e.users.Create(&u, "password123"); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	if role != models.RoleUser {
		u.Role = role
		e.users.byID[u.ID] = u
	}
	token, err := utils.GenerateToken(u.ID, u.Role)
	if err != nil {
		t.Fatalf("token for %s: %v", username, err)
	}
	return u, token
}

func (e *testEnv) seedEvent(t *testing.T, owner int64, title, status string) models.Event {
	t.Helper()
	ev := models.Event{
		Title:     title,
		EventDate: time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC),
		CreatedBy: owner,
		IsPublic:  true,
	}
	if err := e.events.Create(&ev); err != nil {
		t.Fatalf("seed event %s: %v", title, err)
	}
	if status != models.EventStatusActive {
		ev.Status = status
		e.events.events[ev.ID] = ev
	}
	return ev
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}
