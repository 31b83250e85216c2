package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/university-api/internal/cache"
	"github.com/stemsi/university-api/internal/config"
	"github.com/stemsi/university-api/internal/handler"
	"github.com/stemsi/university-api/internal/repository/memstore"
	"github.com/stemsi/university-api/internal/response"
	"github.com/stemsi/university-api/internal/router"
	"github.com/stemsi/university-api/internal/service"
)

type envelope struct {
	Data  map[string]json.RawMessage `json:"data"`
	Error *response.ErrorBody        `json:"error"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	store  *memstore.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := memstore.New()
	c := cache.NewMemory()
	log := zerolog.Nop()

	handlers := &router.Handlers{
		Faculty: handler.NewFacultyHandler(service.NewFacultyService(store, c, log), log),
		Group:   handler.NewGroupHandler(service.NewGroupService(store, c, log), log),
		Student: handler.NewStudentHandler(service.NewStudentService(store, c, log), log),
		System:  handler.NewSystemHandler(store, c, log),
	}
	engine, err := router.SetupRouter(&config.Config{GinMode: gin.TestMode}, handlers, log, nil)
	if err != nil {
		t.Fatalf("setup router: %v", err)
	}

	return &testAPI{t: t, engine: engine, store: store}
}

func (a *testAPI) do(method, path string, body interface{}) (int, envelope) {
	a.t.Helper()
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case string:
		req = httptest.NewRequest(method, path, strings.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	case url.Values:
		req = httptest.NewRequest(method, path, strings.NewReader(b.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		a.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope, key string) T {
	t.Helper()
	var v T
	raw, ok := env.Data[key]
	if !ok {
		t.Fatalf("missing data key %q in %v", key, env.Data)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %q: %v", key, err)
	}
	return v
}

type idOnly struct {
	ID int `json:"id"`
}

func (a *testAPI) create(path, key string, body interface{}) int {
	a.t.Helper()
	code, env := a.do(http.MethodPost, path, body)
	if code != http.StatusCreated {
		a.t.Fatalf("POST %s: status %d, error %+v", path, code, env.Error)
	}
	return decode[idOnly](a.t, env, key).ID
}

func (a *testAPI) seed() (facultyID, groupID int) {
	facultyID = a.create("/api/faculties", "faculty", map[string]interface{}{"name": "Science"})
	groupID = a.create("/api/groups", "group", map[string]interface{}{"name": "S1", "faculty_id": facultyID})
	return facultyID, groupID
}

func validStudent(facultyID, groupID int) map[string]interface{} {
	return map[string]interface{}{
		"name":       "John",
		"last_name":  "Doe",
		"email":      "john@example.com",
		"phone":      "12345678901",
		"faculty_id": facultyID,
		"group_id":   groupID,
	}
}

func TestFacultyCreateRequiresName(t *testing.T) {
	api := newTestAPI(t)

	for _, body := range []interface{}{nil, map[string]string{}, map[string]string{"name": "   "}} {
		code, env := api.do(http.MethodPost, "/api/faculties", body)
		if code != http.StatusUnprocessableEntity {
			t.Fatalf("body %v: expected 422, got %d", body, code)
		}
		if env.Error.Code != response.ErrValidation || env.Error.Fields["name"][0] != "The name field is required." {
			t.Fatalf("unexpected error %+v", env.Error)
		}
	}

	_, env := api.do(http.MethodGet, "/api/faculties", nil)
	if got := decode[[]idOnly](t, env, "faculties"); len(got) != 0 {
		t.Fatalf("expected no faculties, got %v", got)
	}
}

func TestFacultyListIsEmptyArray(t *testing.T) {
	api := newTestAPI(t)
	_, env := api.do(http.MethodGet, "/api/faculties", nil)
	if string(env.Data["faculties"]) != "[]" {
		t.Fatalf("expected [], got %s", env.Data["faculties"])
	}
}

func TestFacultyCreateFromQueryAndForm(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(http.MethodPost, "/api/faculties?name=Law", nil)
	if code != http.StatusCreated {
		t.Fatalf("query create: %d %+v", code, env.Error)
	}
	code, env = api.do(http.MethodPost, "/api/faculties?name=Law", url.Values{"name": {"Arts"}})
	if code != http.StatusCreated {
		t.Fatalf("form create: %d %+v", code, env.Error)
	}

	type named struct {
		Name string `json:"name"`
	}
	if got := decode[named](t, env, "faculty"); got.Name != "Arts" {
		t.Fatalf("body should override query, got %q", got.Name)
	}
}

func TestFacultyRoundTrip(t *testing.T) {
	api := newTestAPI(t)
	id := api.create("/api/faculties", "faculty", map[string]string{"name": "Science"})

	code, env := api.do(http.MethodPut, "/api/faculties/"+itoa(id), map[string]string{"name": "Physics"})
	if code != http.StatusOK {
		t.Fatalf("update: %d %+v", code, env.Error)
	}

	_, env = api.do(http.MethodGet, "/api/faculties/"+itoa(id), nil)
	type named struct {
		Name string `json:"name"`
	}
	if f := decode[named](t, env, "faculty"); f.Name != "Physics" {
		t.Fatalf("expected renamed faculty, got %q", f.Name)
	}
}

func TestMissingIDsReturn404(t *testing.T) {
	api := newTestAPI(t)
	facultyID, groupID := api.seed()

	cases := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, "/api/faculties/999", nil},
		{http.MethodPut, "/api/faculties/999", map[string]string{"name": "X"}},
		{http.MethodDelete, "/api/faculties/999", nil},
		{http.MethodGet, "/api/groups/999", nil},
		{http.MethodDelete, "/api/groups/999", nil},
		{http.MethodGet, "/api/students/999", nil},
		{http.MethodDelete, "/api/students/999", nil},
	}
	for _, tc := range cases {
		code, env := api.do(tc.method, tc.path, tc.body)
		if code != http.StatusNotFound || env.Error.Code != response.ErrNotFound {
			t.Fatalf("%s %s: expected 404, got %d %+v", tc.method, tc.path, code, env.Error)
		}
	}

	// The reference check passes, so only the missing row is reported.
	code, _ := api.do(http.MethodPut, "/api/groups/999", map[string]interface{}{"name": "X", "faculty_id": facultyID})
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 for group update, got %d", code)
	}
	code, _ = api.do(http.MethodPut, "/api/students/999", validStudent(facultyID, groupID))
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 for student update, got %d", code)
	}
}

func TestInvalidPathIDReturns400(t *testing.T) {
	api := newTestAPI(t)
	code, env := api.do(http.MethodGet, "/api/students/abc", nil)
	if code != http.StatusBadRequest || env.Error.Code != response.ErrInvalidID {
		t.Fatalf("expected 400 INVALID_ID, got %d %+v", code, env.Error)
	}
}

func TestPathIDBeyondIntegerRangeReturns404(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{"/api/faculties/3000000000", "/api/groups/99999999999", "/api/students/2147483648"} {
		code, env := api.do(http.MethodGet, path, nil)
		if code != http.StatusNotFound || env.Error.Code != response.ErrNotFound {
			t.Fatalf("GET %s: expected 404, got %d %+v", path, code, env.Error)
		}
	}
	code, env := api.do(http.MethodGet, "/api/faculties/1.5", nil)
	if code != http.StatusBadRequest || env.Error.Code != response.ErrInvalidID {
		t.Fatalf("expected 400 for fractional id, got %d %+v", code, env.Error)
	}
}

func TestReferenceBeyondIntegerRangeIsInvalid(t *testing.T) {
	api := newTestAPI(t)
	facultyID, _ := api.seed()

	code, env := api.do(http.MethodPost, "/api/groups", map[string]interface{}{"name": "S1", "faculty_id": "3000000000"})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %+v", code, env.Error)
	}
	if got := env.Error.Fields["faculty_id"]; len(got) != 1 || got[0] != "The selected faculty id is invalid." {
		t.Fatalf("unexpected faculty_id errors %v", got)
	}

	body := validStudent(facultyID, 0)
	body["group_id"] = "3000000000"
	code, env = api.do(http.MethodPost, "/api/students", body)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %+v", code, env.Error)
	}
	if got := env.Error.Fields["group_id"]; len(got) != 1 || got[0] != "The selected group id is invalid." {
		t.Fatalf("unexpected group_id errors %v", got)
	}
}

func TestMalformedBodyReturns400(t *testing.T) {
	api := newTestAPI(t)
	code, env := api.do(http.MethodPost, "/api/faculties", `{"name":`)
	if code != http.StatusBadRequest || env.Error.Code != response.ErrInvalidPayload {
		t.Fatalf("expected 400 INVALID_PAYLOAD, got %d %+v", code, env.Error)
	}
}

func TestGroupValidation(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(http.MethodPost, "/api/groups", map[string]string{"faculty_id": "abc"})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	if env.Error.Fields["name"][0] != "The name field is required." {
		t.Fatalf("unexpected name errors %v", env.Error.Fields["name"])
	}
	if env.Error.Fields["faculty_id"][0] != "The faculty id must be a number." {
		t.Fatalf("unexpected faculty_id errors %v", env.Error.Fields["faculty_id"])
	}

	code, env = api.do(http.MethodPost, "/api/groups", map[string]interface{}{"name": "S1", "faculty_id": 42})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown faculty, got %d", code)
	}
	if env.Error.Fields["faculty_id"][0] != "The selected faculty id is invalid." {
		t.Fatalf("unexpected faculty_id errors %v", env.Error.Fields["faculty_id"])
	}
}

func TestGroupAcceptsStringAndNumberIDs(t *testing.T) {
	api := newTestAPI(t)
	facultyID := api.create("/api/faculties", "faculty", map[string]string{"name": "Science"})

	api.create("/api/groups", "group", map[string]interface{}{"name": "A", "faculty_id": facultyID})
	api.create("/api/groups", "group", map[string]interface{}{"name": "B", "faculty_id": itoa(facultyID)})

	_, env := api.do(http.MethodGet, "/api/faculties/"+itoa(facultyID)+"/groups", nil)
	if got := decode[[]idOnly](t, env, "groups"); len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
}

func TestGroupResponsesAttachFaculty(t *testing.T) {
	api := newTestAPI(t)
	facultyID, groupID := api.seed()

	type groupView struct {
		ID      int `json:"id"`
		Faculty *struct {
			ID int `json:"id"`
		} `json:"faculty"`
	}

	_, env := api.do(http.MethodGet, "/api/groups/"+itoa(groupID), nil)
	g := decode[groupView](t, env, "group")
	if g.Faculty == nil || g.Faculty.ID != facultyID {
		t.Fatalf("expected faculty %d attached, got %+v", facultyID, g.Faculty)
	}

	_, env = api.do(http.MethodGet, "/api/groups", nil)
	list := decode[[]groupView](t, env, "groups")
	if len(list) != 1 || list[0].Faculty == nil || list[0].Faculty.ID != facultyID {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestStudentFieldErrors(t *testing.T) {
	api := newTestAPI(t)
	facultyID, groupID := api.seed()

	body := validStudent(facultyID, groupID)
	body["name"] = "John1"
	body["email"] = "not-an-email"
	body["phone"] = "123456789012"

	code, env := api.do(http.MethodPost, "/api/students", body)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	want := map[string]string{
		"name":  "The name may only contain letters.",
		"email": "The email must be a valid email address.",
		"phone": "The phone may not be greater than 11 characters.",
	}
	for field, msg := range want {
		if got := env.Error.Fields[field]; len(got) != 1 || got[0] != msg {
			t.Fatalf("field %s: expected [%q], got %v", field, msg, got)
		}
	}
	if len(env.Error.Fields) != len(want) {
		t.Fatalf("unexpected extra fields %v", env.Error.Fields)
	}

	_, env = api.do(http.MethodGet, "/api/students", nil)
	if got := decode[[]idOnly](t, env, "students"); len(got) != 0 {
		t.Fatalf("validation failure must not write, got %v", got)
	}
}

func TestStudentMissingFieldsReportRequiredOnly(t *testing.T) {
	api := newTestAPI(t)
	code, env := api.do(http.MethodPost, "/api/students", map[string]string{})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	for _, field := range []string{"name", "last_name", "email", "phone", "faculty_id", "group_id"} {
		got := env.Error.Fields[field]
		if len(got) != 1 || !strings.HasSuffix(got[0], "field is required.") {
			t.Fatalf("field %s: unexpected %v", field, got)
		}
	}
}

func TestStudentRoundTrip(t *testing.T) {
	api := newTestAPI(t)
	facultyID, groupID := api.seed()

	id := api.create("/api/students", "student", validStudent(facultyID, groupID))

	type studentView struct {
		ID      int    `json:"id"`
		Email   string `json:"email"`
		Faculty *struct {
			ID int `json:"id"`
		} `json:"faculty"`
		Group *struct {
			ID int `json:"id"`
		} `json:"group"`
	}

	_, env := api.do(http.MethodGet, "/api/students/"+itoa(id), nil)
	st := decode[studentView](t, env, "student")
	if st.ID != id || st.Email != "john@example.com" {
		t.Fatalf("unexpected student %+v", st)
	}
	if st.Faculty == nil || st.Faculty.ID != facultyID || st.Group == nil || st.Group.ID != groupID {
		t.Fatalf("relations not attached: %+v", st)
	}

	update := validStudent(facultyID, groupID)
	update["email"] = "doe@example.com"
	code, env := api.do(http.MethodPut, "/api/students/"+itoa(id), update)
	if code != http.StatusOK {
		t.Fatalf("update: %d %+v", code, env.Error)
	}
	if got := decode[studentView](t, env, "student"); got.Email != "doe@example.com" {
		t.Fatalf("expected updated email, got %q", got.Email)
	}

	code, _ = api.do(http.MethodDelete, "/api/students/"+itoa(id), nil)
	if code != http.StatusOK {
		t.Fatalf("delete: %d", code)
	}
	code, _ = api.do(http.MethodGet, "/api/students/"+itoa(id), nil)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", code)
	}
}

func TestGetTwiceReturnsIdenticalData(t *testing.T) {
	api := newTestAPI(t)
	facultyID, groupID := api.seed()
	studentID := api.create("/api/students", "student", validStudent(facultyID, groupID))

	cases := []struct {
		path string
		key  string
	}{
		{"/api/faculties/" + itoa(facultyID), "faculty"},
		{"/api/groups/" + itoa(groupID), "group"},
		{"/api/students/" + itoa(studentID), "student"},
	}
	for _, tc := range cases {
		// The first read fills the cache, the second is served from it.
		_, first := api.do(http.MethodGet, tc.path, nil)
		_, second := api.do(http.MethodGet, tc.path, nil)
		if string(first.Data[tc.key]) != string(second.Data[tc.key]) {
			t.Fatalf("%s: cached read differs\nfirst:  %s\nsecond: %s", tc.path, first.Data[tc.key], second.Data[tc.key])
		}
	}
}

func TestNamesLongerThanColumnAreRejected(t *testing.T) {
	api := newTestAPI(t)
	facultyID, groupID := api.seed()
	long := strings.Repeat("a", 256)

	code, env := api.do(http.MethodPost, "/api/faculties", map[string]string{"name": long})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("faculty: expected 422, got %d %+v", code, env.Error)
	}
	if got := env.Error.Fields["name"]; len(got) != 1 || got[0] != "The name may not be greater than 255 characters." {
		t.Fatalf("faculty: unexpected name errors %v", got)
	}

	code, env = api.do(http.MethodPost, "/api/groups", map[string]interface{}{"name": long, "faculty_id": facultyID})
	if code != http.StatusUnprocessableEntity || len(env.Error.Fields["name"]) != 1 {
		t.Fatalf("group: expected name error, got %d %+v", code, env.Error)
	}

	body := validStudent(facultyID, groupID)
	body["last_name"] = long
	body["email"] = long + "@example.com"
	code, env = api.do(http.MethodPost, "/api/students", body)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("student: expected 422, got %d", code)
	}
	if got := env.Error.Fields["last_name"]; len(got) != 1 || got[0] != "The last name may not be greater than 255 characters." {
		t.Fatalf("student last_name: unexpected %v", got)
	}
	if !slices.Contains(env.Error.Fields["email"], "The email may not be greater than 255 characters.") {
		t.Fatalf("student email: unexpected %v", env.Error.Fields["email"])
	}

	// Exactly at the limit is accepted.
	api.create("/api/faculties", "faculty", map[string]string{"name": long[:255]})
}

func TestFacultyDeleteCascadesToGroups(t *testing.T) {
	api := newTestAPI(t)
	facultyID, groupID := api.seed()
	otherFaculty := api.create("/api/faculties", "faculty", map[string]string{"name": "Arts"})
	otherGroup := api.create("/api/groups", "group", map[string]interface{}{"name": "A1", "faculty_id": otherFaculty})
	studentID := api.create("/api/students", "student", validStudent(facultyID, groupID))

	code, _ := api.do(http.MethodDelete, "/api/faculties/"+itoa(facultyID), nil)
	if code != http.StatusOK {
		t.Fatalf("delete: %d", code)
	}

	code, _ = api.do(http.MethodGet, "/api/groups/"+itoa(groupID), nil)
	if code != http.StatusNotFound {
		t.Fatalf("expected cascaded group to be gone, got %d", code)
	}
	code, _ = api.do(http.MethodGet, "/api/groups/"+itoa(otherGroup), nil)
	if code != http.StatusOK {
		t.Fatalf("unrelated group should remain, got %d", code)
	}

	code, env := api.do(http.MethodGet, "/api/students/"+itoa(studentID), nil)
	if code != http.StatusOK {
		t.Fatalf("student should remain, got %d", code)
	}
	if !strings.Contains(string(env.Data["student"]), `"group":null`) {
		t.Fatalf("expected orphaned group to be null, got %s", env.Data["student"])
	}
}

func TestGroupDeleteKeepsStudents(t *testing.T) {
	api := newTestAPI(t)
	facultyID, groupID := api.seed()
	studentID := api.create("/api/students", "student", validStudent(facultyID, groupID))

	code, _ := api.do(http.MethodDelete, "/api/groups/"+itoa(groupID), nil)
	if code != http.StatusOK {
		t.Fatalf("delete: %d", code)
	}
	code, _ = api.do(http.MethodGet, "/api/students/"+itoa(studentID), nil)
	if code != http.StatusOK {
		t.Fatalf("student should survive group deletion, got %d", code)
	}
}

func TestStorageErrorsAreHidden(t *testing.T) {
	api := newTestAPI(t)
	api.store.FailOn = func(op string) error {
		if op == "faculty.create" {
			return errors.New("connection reset by peer")
		}
		return nil
	}

	code, env := api.do(http.MethodPost, "/api/faculties", map[string]string{"name": "Science"})
	if code != http.StatusInternalServerError || env.Error.Code != response.ErrInternal {
		t.Fatalf("expected 500, got %d %+v", code, env.Error)
	}
	if strings.Contains(env.Error.Message, "connection reset") {
		t.Fatalf("storage error leaked: %q", env.Error.Message)
	}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	code, env := api.do(http.MethodGet, "/health", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if decode[string](t, env, "storage") != "ok" || decode[string](t, env, "cache") != "ok" {
		t.Fatalf("unexpected report %v", env.Data)
	}
}

type downPinger struct{}

func (downPinger) Ping(ctx context.Context) error { return errors.New("down") }

func TestHealthReportsStorageOutage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handler.NewSystemHandler(downPinger{}, nil, zerolog.Nop())
	r := gin.New()
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"cache":"disabled"`) {
		t.Fatalf("expected disabled cache, got %s", w.Body.String())
	}

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error == nil || env.Error.Code != response.ErrServiceUnavailable {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %+v", env.Error)
	}
	if decode[string](t, env, "storage") != "down" {
		t.Fatalf("expected storage down in report, got %v", env.Data)
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
