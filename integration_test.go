package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/giygas/cardioexplain-api/config"
	"github.com/giygas/cardioexplain-api/data"
	"github.com/giygas/cardioexplain-api/glossaryloader"
	"github.com/giygas/cardioexplain-api/handlers"
	"github.com/giygas/cardioexplain-api/health"
	"github.com/giygas/cardioexplain-api/scheduler"
	"github.com/giygas/cardioexplain-api/server"
	"github.com/giygas/cardioexplain-api/validation"
)

const clinicGlossaryV1 = `version: clinic-1
entries:
  - term: ICD
    meaning: Implantable cardioverter defibrillator
    why_it_matters: Treats dangerous fast rhythms
    category: device
  - term: Shock
    meaning: Therapy delivered by the ICD
    why_it_matters: Tell your care team about every shock
    category: alert
`

const clinicGlossaryV2 = `version: clinic-2
entries:
  - term: ICD
    meaning: Implantable cardioverter defibrillator
    why_it_matters: Treats dangerous fast rhythms
    category: device
  - term: Shock
    meaning: Therapy delivered by the ICD
    why_it_matters: Tell your care team about every shock
    category: alert
  - term: LVEF
    meaning: Left ventricular ejection fraction
    why_it_matters: Shows how well the heart pumps
    category: measurement
`

// testApp wires the same components as run, against a glossary file
type testApp struct {
	store     *data.GlossaryContainer
	scheduler *scheduler.Scheduler
	server    *server.Server
	path      string
}

func newTestApp(t *testing.T, document string) *testApp {
	t.Helper()

	path := filepath.Join(t.TempDir(), "glossary.yaml")
	if err := os.WriteFile(path, []byte(document), 0644); err != nil {
		t.Fatalf("Failed to write glossary: %v", err)
	}

	cfg := &config.Config{
		Port:               "0",
		Address:            "127.0.0.1",
		Env:                config.EnvTest,
		MaxRequestBody:     1 << 20,
		MaxHeaderSize:      1 << 20,
		GlossaryPath:       path,
		MaxReportChars:     validation.DefaultMaxReportChars,
		CORSAllowedOrigins: []string{"*"},
	}

	store := data.NewGlossaryContainer()
	store.SetServerStartTime(time.Now())
	validator := validation.NewValidator(cfg.MaxReportChars)

	sched := scheduler.NewScheduler(store, glossaryloader.NewSource(cfg.GlossaryPath), validator, time.Hour)
	if err := sched.Start(); err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}
	t.Cleanup(sched.Stop)

	handler := handlers.NewHTTPHandler(store, validator, health.NewHealthChecker(store, sched), cfg.MaxRequestBody)

	return &testApp{
		store:     store,
		scheduler: sched,
		server:    server.NewServer(cfg, handler),
		path:      path,
	}
}

func (a *testApp) explain(t *testing.T, text string) handlers.ExplainResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/reports/explain", strings.NewReader(text))
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp handlers.ExplainResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func (a *testApp) health(t *testing.T) (int, handlers.HealthResponse) {
	t.Helper()

	rr := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp handlers.HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	return rr.Code, resp
}

func TestIntegrationGlossaryFileToResponse(t *testing.T) {
	app := newTestApp(t, clinicGlossaryV1)

	resp := app.explain(t, "ICD delivered one Shock. LVEF 30%.")

	if resp.GlossaryVersion != "clinic-1" {
		t.Errorf("Expected glossary version clinic-1, got %q", resp.GlossaryVersion)
	}
	if resp.TermCount != 2 {
		t.Fatalf("Expected 2 terms from the clinic glossary, got %d: %+v", resp.TermCount, resp.Terms)
	}
	if resp.Terms[0].Term != "Shock" || resp.Terms[1].Term != "ICD" {
		t.Errorf("Expected alert before device, got %s, %s", resp.Terms[0].Term, resp.Terms[1].Term)
	}
	if resp.AlertCount != 1 {
		t.Errorf("Expected 1 alert, got %d", resp.AlertCount)
	}

	code, h := app.health(t)
	if code != http.StatusOK || h.Status != health.StatusHealthy {
		t.Errorf("Expected healthy 200, got %s %d", h.Status, code)
	}
	if h.Data["next_reload"] == nil {
		t.Error("Expected next reload in health data")
	}
}

func TestIntegrationReloadSwapsGlossary(t *testing.T) {
	app := newTestApp(t, clinicGlossaryV1)

	before := app.explain(t, "LVEF 30%")
	if before.TermCount != 0 {
		t.Fatalf("Expected no terms before reload, got %d", before.TermCount)
	}

	if err := os.WriteFile(app.path, []byte(clinicGlossaryV2), 0644); err != nil {
		t.Fatal(err)
	}
	if err := app.scheduler.Reload(context.Background()); err != nil {
		t.Fatalf("Expected reload to succeed, got %v", err)
	}

	after := app.explain(t, "LVEF 30%")
	if after.GlossaryVersion != "clinic-2" || after.TermCount != 1 {
		t.Errorf("Expected LVEF to be recognised after reload, got %d terms (version %s)",
			after.TermCount, after.GlossaryVersion)
	}
}

func TestIntegrationFailedReloadDegradesHealth(t *testing.T) {
	app := newTestApp(t, clinicGlossaryV1)

	if err := os.WriteFile(app.path, []byte("version: broken\nentries:\n  - term: ICD\n    category: device\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := app.scheduler.Reload(context.Background()); err == nil {
		t.Fatal("Expected reload of an invalid glossary to fail")
	}

	resp := app.explain(t, "Shock delivered")
	if resp.TermCount != 1 {
		t.Errorf("Expected the previous glossary to stay in service, got %d terms", resp.TermCount)
	}

	code, h := app.health(t)
	if code != http.StatusOK || h.Status != health.StatusDegraded {
		t.Errorf("Expected degraded 200, got %s %d", h.Status, code)
	}
	if h.Data["last_reload_error"] == nil {
		t.Error("Expected the reload error in health data")
	}
}

func TestIntegrationConcurrentRequestsDuringReload(t *testing.T) {
	app := newTestApp(t, clinicGlossaryV1)

	var wg sync.WaitGroup
	errs := make(chan string, 100)

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				req := httptest.NewRequest(http.MethodPost, "/v1/reports/explain", strings.NewReader("Shock and ICD"))
				req.Header.Set("Content-Type", "text/plain")
				req.RemoteAddr = "127.0.0.1:1234"
				rr := httptest.NewRecorder()
				app.server.Handler().ServeHTTP(rr, req)
				if rr.Code != http.StatusOK && rr.Code != http.StatusTooManyRequests {
					errs <- rr.Body.String()
				}
			}
		}()
	}

	for i := range 5 {
		doc := clinicGlossaryV1
		if i%2 == 0 {
			doc = clinicGlossaryV2
		}
		if err := os.WriteFile(app.path, []byte(doc), 0644); err != nil {
			t.Fatal(err)
		}
		if err := app.scheduler.Reload(context.Background()); err != nil {
			t.Errorf("Reload %d failed: %v", i, err)
		}
	}

	wg.Wait()
	close(errs)
	for body := range errs {
		t.Errorf("Unexpected response during reload: %s", body)
	}
}
