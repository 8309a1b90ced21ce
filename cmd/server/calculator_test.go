package main

import (
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Simplici0/posadzki/internal/calculator"
	"github.com/Simplici0/posadzki/internal/catalog"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestSnapshotJSONStartsAtFirstStep(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := newTestClient(t, srv.routes())

	rr := c.do(http.MethodGet, "/api/kalkulator", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if _, ok := c.cookies[wizardCookieName]; !ok {
		t.Fatalf("expected wizard cookie to be set")
	}

	payload := decodeSnapshot(t, rr)
	if payload.Snapshot.Steps.Current != 1 || payload.Snapshot.Exportable {
		t.Fatalf("unexpected initial gating: %+v", payload.Snapshot.Steps)
	}
	if payload.Snapshot.UsingFallback {
		t.Fatalf("seeded catalog must not use fallback")
	}
	if payload.EmailEnabled {
		t.Fatalf("email must be disabled without a sender")
	}
	if len(payload.Catalog.SurfaceTypes) == 0 {
		t.Fatalf("expected catalog in payload")
	}
}

func TestLockedStepReturnsConflict(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := newTestClient(t, srv.routes())

	rr := c.post("/kalkulator/surface", url.Values{"surface_type": {"gladka"}})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
	payload := decodeSnapshot(t, rr)
	if payload.Error == "" || payload.Snapshot.Selection.SurfaceTypeID != "" {
		t.Fatalf("locked step must not change the selection: %+v", payload)
	}
}

func TestUnavailableRoomTypeIsRejected(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := newTestClient(t, srv.routes())

	rr := c.post("/kalkulator/room", url.Values{"room_type": {"lokal"}})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	rr = c.post("/kalkulator/room", url.Values{"room_type": {"sauna"}})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown id, got %d", rr.Code)
	}
}

func TestWizardFlowPricesGarage(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := newTestClient(t, srv.routes())

	payload := completeGarageQuote(t, c)
	snap := payload.Snapshot
	nearlyEqual(t, "area", snap.Dimensions.Area, 20)
	nearlyEqual(t, "total", snap.Price.Totals.Total, 5700)
	nearlyEqual(t, "per area", snap.Price.Totals.PerArea, 285)
	if snap.ExportState != calculator.ExportReady {
		t.Fatalf("export state = %q", snap.ExportState)
	}
}

func TestDimensionValidationIsPartOfSnapshot(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := newTestClient(t, srv.routes())

	c.post("/kalkulator/room", url.Values{"room_type": {"kuchnia"}})
	rr := c.post("/kalkulator/dimensions", url.Values{"length": {"0,5"}, "width": {"4"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("validation problems are not request errors, got %d", rr.Code)
	}
	snap := decodeSnapshot(t, rr).Snapshot
	if snap.Dimensions.Valid() || snap.Dimensions.Area != 0 {
		t.Fatalf("expected invalid dimensions, got %+v", snap.Dimensions)
	}
	if snap.Steps.Unlocked(calculator.StepSurfaceType) {
		t.Fatalf("surface step must stay locked")
	}

	rr = c.post("/kalkulator/dimensions", url.Values{"length": {"2,5"}})
	snap = decodeSnapshot(t, rr).Snapshot
	nearlyEqual(t, "area", snap.Dimensions.Area, 10)
	if snap.Selection.Dimensions.Width != "4" {
		t.Fatalf("width must be kept when absent from the form, got %q", snap.Selection.Dimensions.Width)
	}
}

func TestDirectAreaMode(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := newTestClient(t, srv.routes())

	c.post("/kalkulator/room", url.Values{"room_type": {"kuchnia"}})
	if rr := c.post("/kalkulator/mode", url.Values{"mode": {"direct"}}); rr.Code != http.StatusOK {
		t.Fatalf("mode: status %d", rr.Code)
	}
	rr := c.post("/kalkulator/dimensions", url.Values{"area": {"32,5"}})
	nearlyEqual(t, "area", decodeSnapshot(t, rr).Snapshot.Dimensions.Area, 32.5)

	if rr := c.post("/kalkulator/mode", url.Values{"mode": {"sideways"}}); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown mode, got %d", rr.Code)
	}
}

func TestServiceToggleAndPerimeter(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := newTestClient(t, srv.routes())
	before := completeGarageQuote(t, c).Snapshot.Price.Totals.Total

	c.post("/kalkulator/perimeter", url.Values{"perimeter": {"18"}})
	rr := c.post("/kalkulator/service", url.Values{"service": {"cokol"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle: status %d", rr.Code)
	}
	snap := decodeSnapshot(t, rr).Snapshot
	if !containsID(snap.Selection.ServiceIDs, "cokol") {
		t.Fatalf("expected cokol selected, got %v", snap.Selection.ServiceIDs)
	}
	if !(snap.Price.Totals.Total > before) {
		t.Fatalf("skirting must add to the total: %v -> %v", before, snap.Price.Totals.Total)
	}

	rr = c.post("/kalkulator/service", url.Values{"service": {"gruntowanie"}})
	snap = decodeSnapshot(t, rr).Snapshot
	if !containsID(snap.Selection.ServiceIDs, "gruntowanie") {
		t.Fatalf("mandatory service must stay selected")
	}
}

func TestResetClearsSelection(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := newTestClient(t, srv.routes())
	completeGarageQuote(t, c)

	rr := c.post("/kalkulator/reset", nil)
	snap := decodeSnapshot(t, rr).Snapshot
	if snap.Selection.RoomTypeID != "" || snap.Price.Ready {
		t.Fatalf("expected empty selection after reset, got %+v", snap.Selection)
	}
}

func TestHTMLActionsRedirectAndRender(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := newTestClient(t, srv.routes())
	c.json = false

	rr := c.post("/kalkulator/room", url.Values{"room_type": {catalog.GarageRoomTypeID}})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/kalkulator" {
		t.Fatalf("expected redirect to wizard, got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = c.do(http.MethodGet, "/kalkulator", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{"Garaż / piwnica", "Stan podłoża", `action="/kalkulator/concrete"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}

	rr = c.post("/kalkulator/color", url.Values{"color": {"ral-7035"}})
	if rr.Code != http.StatusConflict || !strings.Contains(rr.Body.String(), "Uzupełnij najpierw poprzednie kroki.") {
		t.Fatalf("expected 409 page with message, got %d", rr.Code)
	}
}

func TestHiddenColorStepPicksFirstColor(t *testing.T) {
	srv, st := newTestServer(t, nil)
	if err := st.SetStepVisible(t.Context(), catalog.StepColor, false); err != nil {
		t.Fatalf("hide color step: %v", err)
	}
	c := newTestClient(t, srv.routes())

	c.post("/kalkulator/room", url.Values{"room_type": {"kuchnia"}})
	c.post("/kalkulator/dimensions", url.Values{"length": {"5"}, "width": {"4"}})
	rr := c.post("/kalkulator/surface", url.Values{"surface_type": {"gladka"}})
	snap := decodeSnapshot(t, rr).Snapshot
	if snap.Steps.Present(calculator.StepColor) {
		t.Fatalf("color step must be absent")
	}
	if snap.Selection.ColorID == "" || !snap.Exportable {
		t.Fatalf("expected implicit color and exportable snapshot, got %+v", snap.Selection)
	}
}

func TestOutOfRangePerimeterIsReportedAndBlocksExport(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := newTestClient(t, srv.routes())
	completeGarageQuote(t, c)
	c.post("/kalkulator/service", url.Values{"service": {"cokol"}})

	rr := c.post("/kalkulator/perimeter", url.Values{"perimeter": {"1e308"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("perimeter: status %d, body %q", rr.Code, rr.Body.String())
	}
	snap := decodeSnapshot(t, rr).Snapshot
	if snap.PerimeterError == nil {
		t.Fatalf("expected perimeter error in snapshot")
	}
	if snap.Exportable {
		t.Fatalf("snapshot with rejected perimeter must not be exportable")
	}
	nearlyEqual(t, "total", snap.Price.Totals.Total, 5700)

	if rr := c.do(http.MethodGet, "/api/kalkulator", nil); rr.Code != http.StatusOK {
		t.Fatalf("snapshot endpoint: status %d", rr.Code)
	}
	if rr := c.post("/kalkulator/quote.pdf", nil); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("export: expected 422, got %d", rr.Code)
	}
}

func TestWriteJSONReportsEncodeFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	srv := &server{logger: zap.New(core)}

	rr := httptest.NewRecorder()
	srv.writeJSON(rr, http.StatusOK, map[string]float64{"total": math.Inf(1)})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("failed response must not claim a JSON body")
	}
	if logs.FilterMessage("encode json response").Len() != 1 {
		t.Fatalf("expected the encode failure to be logged, got %v", logs.All())
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
