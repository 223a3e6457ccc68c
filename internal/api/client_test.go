package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"labmate-cli/internal/model"
)

type staticTokens string

func (s staticTokens) AccessToken(ctx context.Context) (string, bool) {
	return string(s), s != ""
}

func newTestClient(t *testing.T, handler http.Handler, tok string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, staticTokens(tok)), srv
}

func TestBearerAndRequestIDHeaders(t *testing.T) {
	var gotAuth, gotReqID string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"email":"a@b.c","role":"observer"}`))
	}), "tok-123")

	if _, err := c.WhoAmI(context.Background()); err != nil {
		t.Fatalf("WhoAmI: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotReqID == "" {
		t.Fatal("no X-Request-ID header sent")
	}
}

func TestAnonymousWhenNoToken(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}), "")

	if _, err := c.ListArticles(context.Background(), "", 0); err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("anonymous call carried Authorization = %q", gotAuth)
	}
}

func TestUnauthenticatedFiresHook(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}), "stale")

	var fired atomic.Int32
	c.OnUnauthenticated = func() { fired.Add(1) }

	_, err := c.WhoAmI(context.Background())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v; want ErrUnauthenticated", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Kind != KindAuth {
		t.Fatalf("err = %#v; want KindAuth", err)
	}
	if fired.Load() != 1 {
		t.Fatalf("hook fired %d times; want 1", fired.Load())
	}
}

func TestProbeAbsenceNeverFiresHook(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusNotFound} {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"detail":"Profile not found. Create one first."}`))
		}), "tok")
		c.OnUnauthenticated = func() { t.Errorf("hook fired on probe %d", status) }

		p, ok, err := c.FetchMyProfile(context.Background())
		if err != nil {
			t.Fatalf("probe %d: err = %v; want nil", status, err)
		}
		if ok || p != nil {
			t.Fatalf("probe %d: ok = %v, p = %v; want absent", status, ok, p)
		}
	}
}

func TestProbePresent(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":7,"user_id":3,"first_name":"Ada","major":"NLP, IR"}`))
	}), "tok")

	p, ok, err := c.FetchMyProfile(context.Background())
	if err != nil || !ok {
		t.Fatalf("probe: %v, ok=%v", err, ok)
	}
	if got := p.Majors(); len(got) != 2 || got[0] != "NLP" || got[1] != "IR" {
		t.Fatalf("Majors = %v", got)
	}
}

func TestValidationDetailJoined(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[
			{"loc":["body","title"],"msg":"field required","type":"value_error.missing"},
			{"loc":["body","required_roles"],"msg":"ensure this value has at least 1 items","type":"value_error.list.min_items"}
		]}`))
	}), "tok")

	_, err := c.CreateTeamRequest(context.Background(), model.TeamRequestInput{})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v; want *Error", err)
	}
	if apiErr.Kind != KindValidation {
		t.Fatalf("Kind = %v; want KindValidation", apiErr.Kind)
	}
	if !strings.Contains(apiErr.Message, "title: field required") ||
		!strings.Contains(apiErr.Message, "required_roles:") {
		t.Fatalf("Message = %q", apiErr.Message)
	}
	if apiErr.Fields["title"] != "field required" {
		t.Fatalf("Fields = %v", apiErr.Fields)
	}
}

func TestPlainDetailBecomesMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Invalid file type"}`))
	}), "tok")

	_, err := c.FetchProfile(context.Background(), 1)
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Kind != KindAPI || apiErr.Message != "Invalid file type" {
		t.Fatalf("err = %v", err)
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Email already registered"}`))
	}), "")

	_, err := c.Register(context.Background(), "a@b.c", "pw")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v; want ErrEmailTaken", err)
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(srv.URL, time.Second, nil)

	_, err := c.WhoAmI(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Kind != KindNetwork {
		t.Fatalf("err = %v; want KindNetwork", err)
	}
}

func TestServerErrorMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), "tok")

	_, err := c.WhoAmI(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Kind != KindAPI || apiErr.StatusCode != 500 {
		t.Fatalf("err = %v", err)
	}
	if apiErr.Message == "" {
		t.Fatal("empty 5xx message")
	}
}

func TestSearchProfilesQuery(t *testing.T) {
	var gotPath, gotQ, gotLimit string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQ = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`[{"id":1,"user_id":2,"first_name":"Ada","last_name":"L","university":"MIT"}]`))
	}), "")

	out, err := c.SearchProfiles(context.Background(), "nlp", 20)
	if err != nil {
		t.Fatalf("SearchProfiles: %v", err)
	}
	if gotPath != "/api/v1/profile/search" || gotQ != "nlp" || gotLimit != "20" {
		t.Fatalf("request = %s?q=%s&limit=%s", gotPath, gotQ, gotLimit)
	}
	if len(out) != 1 || out[0].DisplayName() != "Ada L" {
		t.Fatalf("out = %v", out)
	}
}

func TestImportFileMultipart(t *testing.T) {
	var gotField, gotName, gotCT string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		for field, headers := range r.MultipartForm.File {
			gotField = field
			gotName = headers[0].Filename
			gotCT = headers[0].Header.Get("Content-Type")
		}
		_, _ = w.Write([]byte(`{"status":"success","users_processed":37,"profiles_upserted":35}`))
	}), "admin-tok")

	res, err := c.ImportFile(context.Background(), "/tmp/researchers.csv",
		strings.NewReader("email,first_name\na@b.c,Ada\n"))
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if gotField != "file" || gotName != "researchers.csv" || gotCT != "text/csv" {
		t.Fatalf("part = %s %s %s", gotField, gotName, gotCT)
	}
	if res.Status != "success" || res.UsersProcessed != 37 || res.ProfilesUpserted != 35 {
		t.Fatalf("res = %+v", res)
	}
}

func TestImportFileSkippedStatus(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"skipped","message":"No profile data found."}`))
	}), "admin-tok")

	res, err := c.ImportFile(context.Background(), "empty.csv", strings.NewReader("email\n"))
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if res.Status != "skipped" || res.Message != "No profile data found." {
		t.Fatalf("res = %+v", res)
	}
	if res.UsersProcessed != 0 || res.ProfilesUpserted != 0 {
		t.Fatalf("counts on a skipped import = %+v", res)
	}
}

func TestImportFileRejectsUnknownExtension(t *testing.T) {
	c := New("http://unused.invalid", time.Second, nil)
	_, err := c.ImportFile(context.Background(), "notes.txt", strings.NewReader("x"))
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Kind != KindAPI {
		t.Fatalf("err = %v", err)
	}
}

func TestImportFileRejectsOversize(t *testing.T) {
	c := New("http://unused.invalid", time.Second, nil)
	big := strings.NewReader(strings.Repeat("a", MaxImportSize+1))
	_, err := c.ImportFile(context.Background(), "big.csv", big)
	var apiErr *Error
	if !errors.As(err, &apiErr) || !strings.Contains(apiErr.Message, "5 MB") {
		t.Fatalf("err = %v", err)
	}
}
