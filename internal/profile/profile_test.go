package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"PumpStation/internal/auth"
	"PumpStation/internal/repo"

	"github.com/gorilla/mux"
)

func setup(t *testing.T) (*mux.Router, int) {
	t.Helper()
	store := repo.NewMemoryUserDB()
	id, err := store.CreateUser(context.Background(), "ana", "ana@example.com", "hash")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateUser(context.Background(), "bob", "bob@example.com", "hash"); err != nil {
		t.Fatal(err)
	}
	h := &ProfileHandler{Repo: store}
	r := mux.NewRouter()
	r.HandleFunc("/profile", h.GetProfile).Methods("GET")
	r.HandleFunc("/profile", h.UpdateProfile).Methods("PUT")
	r.HandleFunc("/profile/{id:[0-9]+}", h.GetProfile).Methods("GET")
	return r, id
}

func do(r http.Handler, method, path, body string, userID int) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != 0 {
		req = req.WithContext(auth.WithUser(req.Context(), userID, "ana"))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUpdateAndGetPreferences(t *testing.T) {
	r, id := setup(t)

	rec := do(r, http.MethodPut, "/profile", `{"flow_unit":"gpm","height_unit":"ft"}`, id)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("PUT status = %d: %s", rec.Code, rec.Body)
	}

	rec = do(r, http.MethodGet, "/profile", "", id)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	var p repo.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.FlowUnit != "gpm" || p.HeightUnit != "ft" || p.Email != "ana@example.com" {
		t.Errorf("profile = %+v", p)
	}
}

func TestOtherProfileHidesEmail(t *testing.T) {
	r, id := setup(t)
	rec := do(r, http.MethodGet, "/profile/2", "", id)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var p repo.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.Login != "bob" || p.Email != "" {
		t.Errorf("profile = %+v", p)
	}
	if rec := do(r, http.MethodGet, "/profile/42", "", id); rec.Code != http.StatusNotFound {
		t.Errorf("missing profile status = %d", rec.Code)
	}
}

func TestUpdateRejects(t *testing.T) {
	r, id := setup(t)
	tests := []struct {
		body   string
		user   int
		status int
	}{
		{`{"flow_unit":"cfs","height_unit":"m"}`, id, http.StatusBadRequest},
		{`{"flow_unit":"l/s","height_unit":"yd"}`, id, http.StatusBadRequest},
		{`{`, id, http.StatusBadRequest},
		{`{"flow_unit":"l/s","height_unit":"m"}`, 0, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		if rec := do(r, http.MethodPut, "/profile", tt.body, tt.user); rec.Code != tt.status {
			t.Errorf("%s (user %d): status = %d, want %d", tt.body, tt.user, rec.Code, tt.status)
		}
	}
}
