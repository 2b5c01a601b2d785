package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"PumpStation/internal/config"
	"PumpStation/internal/metrics"
	"PumpStation/internal/repo"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const calcBody = `{"geometric_height":25,"geometric_height_unit":"m","flow_rate":50,"flow_rate_unit":"l/s",
"pipe_length":150,"pipe_length_unit":"m","pipe_diameter":200,"pipe_diameter_unit":"mm",
"pipe_material":"pvc","pump_efficiency":0.75}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	static := t.TempDir()
	if err := os.MkdirAll(filepath.Join(static, "auth"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(static, "auth", "index.html"), []byte("login page"), 0o644); err != nil {
		t.Fatal(err)
	}
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	cfg := &config.Config{
		TokenKey:  "test-key",
		StaticDir: static,
		RateLimit: 100,
		RateBurst: 100,
	}
	router := mux.NewRouter()
	router.Use(RequestLogger(log))
	HandleList(router, cfg, repo.NewMemoryUserDB(), metrics.New(), log)
	srv := httptest.NewServer(CORS(router))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, c *http.Client, url, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestPublicRoutes(t *testing.T) {
	srv := newServer(t)
	c := srv.Client()

	if resp := post(t, c, srv.URL+"/api/tools/pumpstation/calc", calcBody); resp.StatusCode != http.StatusOK {
		t.Errorf("calc status = %d", resp.StatusCode)
	}
	resp := post(t, c, srv.URL+"/api/tools/pumpstation/report", calcBody)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/pdf" {
		t.Errorf("report status = %d, type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	m, err := c.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer m.Body.Close()
	if m.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d", m.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/tools/pumpstation/calc", nil)
	pre, err := c.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer pre.Body.Close()
	if pre.StatusCode != http.StatusNoContent || pre.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight status = %d", pre.StatusCode)
	}
}

func TestUserRoutesRequireSession(t *testing.T) {
	srv := newServer(t)
	c := srv.Client()

	if resp := post(t, c, srv.URL+"/api/user/tools/pumpstation/size", calcBody); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous size status = %d", resp.StatusCode)
	}

	reg := post(t, c, srv.URL+"/api/register", `{"login":"ana","email":"ana@example.com","password":"secret1"}`)
	if reg.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", reg.StatusCode)
	}
	cookies := reg.Cookies()

	for _, path := range []string{"size", "motor"} {
		if resp := post(t, c, srv.URL+"/api/user/tools/pumpstation/"+path, calcBody, cookies...); resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d", path, resp.StatusCode)
		}
	}
	batch := `{"items":[` + calcBody + `]}`
	if resp := post(t, c, srv.URL+"/api/user/tools/pumpstation/batch", batch, cookies...); resp.StatusCode != http.StatusOK {
		t.Errorf("batch status = %d", resp.StatusCode)
	}
}

func TestAuthPages(t *testing.T) {
	srv := newServer(t)
	c := srv.Client()
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := c.Get(srv.URL + "/auth/")
	if err != nil {
		t.Fatal(err)
	}
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(page) != "login page" {
		t.Errorf("anonymous: status %d, body %q", resp.StatusCode, page)
	}

	reg := post(t, c, srv.URL+"/api/register", `{"login":"ana","email":"ana@example.com","password":"secret1"}`)
	if reg.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", reg.StatusCode)
	}
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/auth/", nil)
	for _, ck := range reg.Cookies() {
		req.AddCookie(ck)
	}
	resp, err = c.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Errorf("signed in: status %d, location %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}
