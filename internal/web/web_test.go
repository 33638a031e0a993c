package web

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-automission-monitor/internal/core/auth"
	"github.com/penwyp/go-automission-monitor/internal/core/model"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
	"github.com/penwyp/go-automission-monitor/internal/data/source/memory"
	"github.com/penwyp/go-automission-monitor/internal/presentation/formatter"
)

func stamp(minutesAgo int) *time.Time {
	t := time.Now().Add(-time.Duration(minutesAgo) * time.Minute)
	return &t
}

func newTestServer(t *testing.T, records ...model.ApplicationRecord) (*Server, *memory.Source) {
	t.Helper()
	src := memory.New(records...)
	sessions, err := NewSessions("test-signing-key", time.Hour)
	require.NoError(t, err)
	srv, err := NewServer(Options{
		Source:   src,
		Checker:  auth.NewStaticChecker("admin123"),
		Sessions: sessions,
	})
	require.NoError(t, err)
	return srv, src
}

func loginCookie(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()
	rec := postLogin(srv, "admin123")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func postLogin(srv *Server, password string) *httptest.ResponseRecorder {
	form := url.Values{"password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSessions(t *testing.T) {
	s, err := NewSessions("", time.Minute)
	require.NoError(t, err)

	token, exp, err := s.Issue()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, time.Second)
	assert.NoError(t, s.Verify(token))

	assert.ErrorIs(t, s.Verify(""), errUnauthorized)
	assert.ErrorIs(t, s.Verify("not-a-token"), errUnauthorized)

	other, err := NewSessions("", time.Minute)
	require.NoError(t, err)
	assert.ErrorIs(t, other.Verify(token), errUnauthorized)

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.ErrorIs(t, s.Verify(token), errUnauthorized)
}

func TestIndexShowsLoginWhenLocked(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Bot Dashboard Login")
	assert.Contains(t, body, `placeholder="Enter Password"`)
	assert.Contains(t, body, "Access Dashboard")
	assert.NotContains(t, body, "Incorrect password")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		wantStatus int
		wantCookie bool
	}{
		{"correct", "admin123", http.StatusSeeOther, true},
		{"wrong", "admin", http.StatusUnauthorized, false},
		{"empty", "", http.StatusUnauthorized, false},
		{"case sensitive", "ADMIN123", http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t)
			rec := postLogin(srv, tt.password)

			assert.Equal(t, tt.wantStatus, rec.Code)
			hasCookie := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == sessionCookie && c.Value != "" {
					hasCookie = true
					assert.True(t, c.HttpOnly)
				}
			}
			assert.Equal(t, tt.wantCookie, hasCookie)
			if !tt.wantCookie {
				assert.Equal(t, 1, strings.Count(rec.Body.String(), "Incorrect password"))
			}
		})
	}
}

func TestIndexRendersFeed(t *testing.T) {
	srv, _ := newTestServer(t,
		model.ApplicationRecord{ID: "1", Company: "Acme", JobTitle: "SRE", Link: "https://example.com/jobs/1", Status: "Applied", Timestamp: stamp(5)},
		model.ApplicationRecord{ID: "2", Company: "Globex", JobTitle: "QA", Link: "javascript:alert(1)", Status: "Failed: timeout"},
	)
	cookie := loginCookie(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "LinkedIn Automission Live")
	assert.Contains(t, body, "Showing last 100 actions")
	assert.Contains(t, body, `<a href="https://example.com/jobs/1" target="_blank" rel="noopener noreferrer">SRE</a>`)
	assert.NotContains(t, body, "javascript:alert")
	assert.NotContains(t, body, "ZgotmplZ")
	assert.Contains(t, body, "<div>QA</div>")
	assert.Contains(t, body, "a.href=link")
	assert.Contains(t, body, "5 minutes ago")
	assert.Contains(t, body, "Just now")
	assert.Contains(t, body, `<span class="badge failed">Failed</span>`)
	assert.NotContains(t, body, "Waiting for bot signals...")
}

func TestWebLink(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://www.linkedin.com/jobs/view/1", "https://www.linkedin.com/jobs/view/1"},
		{"HTTP://example.com", "HTTP://example.com"},
		{" https://example.com ", "https://example.com"},
		{"javascript:alert(1)", ""},
		{"JavaScript:alert(1)", ""},
		{"data:text/html,hi", ""},
		{"//example.com", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			assert.Equal(t, tt.want, webLink(tt.link))
		})
	}
}

func TestIndexEmptyState(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(loginCookie(t, srv))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 1, strings.Count(rec.Body.String(), "Waiting for bot signals..."))
}

func TestProtectedRoutesRejectLockedRequests(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/events", "/api/snapshot"} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestSnapshotEndpoint(t *testing.T) {
	srv, _ := newTestServer(t,
		model.ApplicationRecord{ID: "1", Company: "Acme", Status: "Applied", Timestamp: stamp(1)},
		model.ApplicationRecord{ID: "2", Company: "Globex", Status: "Skipped - No Button", Timestamp: stamp(2)},
	)
	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	req.AddCookie(loginCookie(t, srv))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report formatter.Report
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, model.AggregateStats{Total: 2, Applied: 1, Skipped: 1}, report.Stats)
	assert.Equal(t, "1", report.Records[0].ID)
}

func TestSnapshotEndpointHonoursQueryLimit(t *testing.T) {
	src := memory.New(
		model.ApplicationRecord{ID: "1", Status: "Applied", Timestamp: stamp(1)},
		model.ApplicationRecord{ID: "2", Status: "Applied", Timestamp: stamp(2)},
		model.ApplicationRecord{ID: "3", Status: "Applied", Timestamp: stamp(3)},
	)
	srv, err := NewServer(Options{
		Source:  src,
		Checker: auth.NewStaticChecker("admin123"),
		Query:   source.DefaultQuery().WithLimit(2),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	req.AddCookie(loginCookie(t, srv))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report formatter.Report
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &report))
	assert.Len(t, report.Records, 2)
	assert.Equal(t, 2, report.Stats.Total)
}

func TestEventsStream(t *testing.T) {
	srv, src := newTestServer(t,
		model.ApplicationRecord{ID: "1", Company: "Acme", Status: "Applied", Timestamp: stamp(3)},
	)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	require.NoError(t, err)
	req.AddCookie(loginCookie(t, srv))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	next := func() formatter.Report {
		t.Helper()
		var event string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				require.Equal(t, "snapshot", event)
				var r formatter.Report
				require.NoError(t, sonic.UnmarshalString(strings.TrimPrefix(line, "data: "), &r))
				return r
			}
		}
	}

	first := next()
	assert.Equal(t, 1, first.Stats.Total)
	assert.Equal(t, "Live", first.Indicator)

	src.Put(model.ApplicationRecord{ID: "2", Company: "Globex", Status: "Failed - Exception", Timestamp: stamp(1)})
	second := next()
	assert.Equal(t, 2, second.Stats.Total)
	assert.Equal(t, "2", second.Records[0].ID)
	assert.Equal(t, model.BadgeFailed, second.Records[0].Badge)

	cancel()
	require.Eventually(t, func() bool { return src.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}
