package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-signage/internal/display"
	"github.com/i474232898/weather-signage/internal/settings"
	"github.com/i474232898/weather-signage/internal/weather"
)

type stubDisplay struct {
	view    display.View
	retries int
}

func (d *stubDisplay) View() display.View { return d.view }

func (d *stubDisplay) Retry() bool {
	d.retries++
	return true
}

func newTestApp(t *testing.T, loaded bool) (*fiber.App, *stubDisplay, *settings.MemoryStore) {
	t.Helper()
	store := settings.NewMemoryStore(nil)
	if loaded {
		s := settings.Defaults()
		s.Locations = []weather.LocationConfig{{ID: "a", Type: weather.LocationManual, City: "Paris"}}
		if _, err := store.Set(context.Background(), s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	disp := &stubDisplay{view: display.View{
		State:        display.State{Phase: display.PhaseDisplaying, Visible: true},
		LocationName: "Paris",
	}}

	app := fiber.New()
	RegisterRoutes(app, disp, store)
	return app, disp, store
}

func do(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d", want, resp.StatusCode)
	}
}

func TestDisplayWithLayout(t *testing.T) {
	app, _, _ := newTestApp(t, true)

	resp := do(t, app, http.MethodGet, "/api/v1/display?aspect=1920x480", "")
	expectStatus(t, resp, http.StatusOK)

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body["layout"] != "extreme-ribbon" || body["phase"] != "displaying" || body["locationName"] != "Paris" {
		t.Fatalf("unexpected body %v", body)
	}

	resp = do(t, app, http.MethodGet, "/api/v1/display?aspect=tall", "")
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestRetryIsAccepted(t *testing.T) {
	app, disp, _ := newTestApp(t, true)
	resp := do(t, app, http.MethodPost, "/api/v1/display/retry", "")
	expectStatus(t, resp, http.StatusAccepted)
	if disp.retries != 1 {
		t.Fatalf("expected one retry, got %d", disp.retries)
	}
}

func TestLayoutRequiresAspect(t *testing.T) {
	app, _, _ := newTestApp(t, true)
	expectStatus(t, do(t, app, http.MethodGet, "/api/v1/layout", ""), http.StatusBadRequest)

	resp := do(t, app, http.MethodGet, "/api/v1/layout?aspect=0.5", "")
	expectStatus(t, resp, http.StatusOK)
	var body struct{ Variant string }
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Variant != "vertical-strip" {
		t.Fatalf("expected vertical-strip, got %q", body.Variant)
	}
}

func TestLayoutRejectsNonFiniteAspect(t *testing.T) {
	app, _, _ := newTestApp(t, true)
	for _, aspect := range []string{"NaN", "Inf", "-Inf", "1920xInf"} {
		expectStatus(t, do(t, app, http.MethodGet, "/api/v1/layout?aspect="+aspect, ""), http.StatusBadRequest)
	}
}

func TestSettingsUnavailableUntilLoaded(t *testing.T) {
	app, _, _ := newTestApp(t, false)
	expectStatus(t, do(t, app, http.MethodGet, "/api/v1/settings", ""), http.StatusServiceUnavailable)
	expectStatus(t, do(t, app, http.MethodPost, "/api/v1/settings/locations", `{"type":"auto"}`), http.StatusServiceUnavailable)
}

func TestPutSettingsValidates(t *testing.T) {
	app, _, store := newTestApp(t, true)

	resp := do(t, app, http.MethodPut, "/api/v1/settings", `{"locations":[{"id":"x","type":"manual"}]}`)
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, app, http.MethodPut, "/api/v1/settings", `{"locations":[{"id":"x","type":"manual","city":"Rome"}],"units":"imperial","forecastRange":"24h"}`)
	expectStatus(t, resp, http.StatusOK)

	s, _ := store.Get()
	if s.Units != weather.UnitsImperial || s.ForecastRange != weather.RangeHourly || len(s.Locations) != 1 {
		t.Fatalf("expected normalized settings, got %#v", s)
	}
}

func TestAddAndDeleteLocation(t *testing.T) {
	app, _, store := newTestApp(t, true)

	resp := do(t, app, http.MethodPost, "/api/v1/settings/locations", `{"type":"manual"}`)
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, app, http.MethodPost, "/api/v1/settings/locations", `{"type":"auto","city":"ignored","label":"Here"}`)
	expectStatus(t, resp, http.StatusCreated)

	var created weather.LocationConfig
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" || created.City != "" || created.Label != "Here" {
		t.Fatalf("unexpected location %#v", created)
	}

	s, _ := store.Get()
	if len(s.Locations) != 2 || s.Locations[1].ID != created.ID {
		t.Fatalf("expected location to be appended, got %#v", s.Locations)
	}

	expectStatus(t, do(t, app, http.MethodDelete, "/api/v1/settings/locations/"+created.ID, ""), http.StatusNoContent)
	expectStatus(t, do(t, app, http.MethodDelete, "/api/v1/settings/locations/"+created.ID, ""), http.StatusNotFound)

	if s, _ := store.Get(); len(s.Locations) != 1 || s.Locations[0].ID != "a" {
		t.Fatalf("expected only the seed location left, got %#v", s.Locations)
	}
}

func TestDuplicateLocationIDRejected(t *testing.T) {
	app, _, _ := newTestApp(t, true)
	resp := do(t, app, http.MethodPost, "/api/v1/settings/locations", `{"id":"a","type":"manual","city":"Rome"}`)
	expectStatus(t, resp, http.StatusBadRequest)
}
