package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/posadzki/internal/calculator"
	"github.com/Simplici0/posadzki/internal/catalog"
	"github.com/Simplici0/posadzki/internal/db"
	"github.com/Simplici0/posadzki/internal/mailer"
	"github.com/Simplici0/posadzki/internal/migrations"
	"github.com/Simplici0/posadzki/internal/quote"
	"github.com/Simplici0/posadzki/internal/seed"
	"github.com/Simplici0/posadzki/internal/store"
)

const (
	testAdminEmail    = "admin@posadzki.pl"
	testAdminPassword = "bardzo-tajne"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeInvalidator struct{ calls int }

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.calls++
	return nil
}

// newTestServer wires the server over an in-memory SQLite database seeded with
// the built-in catalog and an admin user. A nil sender disables email.
func newTestServer(t *testing.T, sender mailer.Sender) (*server, *store.Store) {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	database, err := db.Open(ctx, ":memory:", db.Options{ConnectTimeout: time.Second}, logger)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database.DB, database.DriverName()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := seed.Run(ctx, database, seed.Config{AdminEmail: testAdminEmail, AdminPassword: testAdminPassword}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	st := store.New(database, logger)
	srv := &server{
		logger:   logger,
		store:    st,
		exporter: quote.NewExporter(quote.Company{Name: "Posadzki Test"}, sender, st, nil, logger),
		wizards:  newWizardRegistry(catalog.NewLoader(st, nil, logger), calculator.DefaultBounds(), time.Hour),
		auth:     newAuthService(st, "test-secret", time.Hour),
	}
	return srv, st
}

// testClient keeps cookies between requests against one handler.
type testClient struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
	json    bool
}

func newTestClient(t *testing.T, h http.Handler) *testClient {
	return &testClient{t: t, handler: h, cookies: make(map[string]*http.Cookie), json: true}
}

func (c *testClient) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if c.json {
		req.Header.Set("Accept", "application/json")
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	for _, ck := range rr.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return rr
}

func (c *testClient) post(path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	return c.do(http.MethodPost, path, form)
}

func decodeSnapshot(t *testing.T, rr *httptest.ResponseRecorder) snapshotPayload {
	t.Helper()
	var payload snapshotPayload
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode snapshot: %v (body %q)", err, rr.Body.String())
	}
	return payload
}

// completeGarageQuote drives the wizard through a 5 m × 4 m garage with a
// smooth grey floor.
func completeGarageQuote(t *testing.T, c *testClient) snapshotPayload {
	t.Helper()
	steps := []struct {
		path string
		form url.Values
	}{
		{"/kalkulator/room", url.Values{"room_type": {catalog.GarageRoomTypeID}}},
		{"/kalkulator/concrete", url.Values{"concrete_state": {"nowa-wylewka"}}},
		{"/kalkulator/dimensions", url.Values{"length": {"5"}, "width": {"4"}}},
		{"/kalkulator/surface", url.Values{"surface_type": {"gladka"}}},
		{"/kalkulator/color", url.Values{"color": {"ral-7035"}}},
	}
	var rr *httptest.ResponseRecorder
	for _, st := range steps {
		rr = c.post(st.path, st.form)
		if rr.Code != http.StatusOK {
			t.Fatalf("POST %s: status %d, body %s", st.path, rr.Code, rr.Body.String())
		}
	}
	payload := decodeSnapshot(t, rr)
	if !payload.Snapshot.Exportable {
		t.Fatalf("expected exportable snapshot, got %+v", payload.Snapshot.Steps)
	}
	return payload
}
