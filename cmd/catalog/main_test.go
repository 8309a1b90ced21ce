package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Simplici0/posadzki/internal/catalog"
	"github.com/Simplici0/posadzki/internal/db"
	"github.com/Simplici0/posadzki/internal/migrations"
	"github.com/Simplici0/posadzki/internal/store"
)

const importJSON = `{
  "colors": [
    {"id": "ral-1015", "name": "Kość słoniowa", "ralCode": "RAL 1015", "additionalPrice": "7.5"}
  ],
  "steps": [
    {"stepId": "color", "label": "Wybierz kolor", "visible": true, "canBeHidden": true}
  ]
}`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write import file: %v", err)
	}
	return path
}

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	database, err := db.Open(context.Background(), ":memory:", db.Options{ConnectTimeout: time.Second}, zap.NewNop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := migrations.Up(database.DB, database.DriverName()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func TestValidateFile(t *testing.T) {
	var out bytes.Buffer
	if err := validateFile(writeFile(t, importJSON), &out); err != nil {
		t.Fatalf("validateFile: %v", err)
	}
	if !strings.Contains(out.String(), "colors") || !strings.Contains(out.String(), "is valid") {
		t.Fatalf("unexpected output: %s", out.String())
	}

	if err := validateFile(writeFile(t, `{"colors": [{"name": "bez id"}]}`), &out); err == nil {
		t.Fatalf("expected schema error for record without id")
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	for _, args := range [][]string{nil, {"frobnicate"}, {"validate"}, {"import"}} {
		if err := run(context.Background(), args, &bytes.Buffer{}); !errors.Is(err, errUsage) {
			t.Fatalf("%v: expected usage error, got %v", args, err)
		}
	}
}

func TestImportFileUpsertsRecords(t *testing.T) {
	database := newTestDB(t)
	path := writeFile(t, importJSON)
	ctx := context.Background()

	var out bytes.Buffer
	if err := importFile(ctx, database, path, false, &out); err != nil {
		t.Fatalf("importFile: %v", err)
	}
	if !strings.Contains(out.String(), "2 inserted") {
		t.Fatalf("unexpected output: %s", out.String())
	}

	out.Reset()
	if err := importFile(ctx, database, path, true, &out); err != nil {
		t.Fatalf("importFile overwrite: %v", err)
	}
	if !strings.Contains(out.String(), "2 updated") {
		t.Fatalf("unexpected output: %s", out.String())
	}

	raw, err := store.New(database, zap.NewNop()).LoadRaw(ctx)
	if err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	cat := catalog.Normalize(raw, nil)
	color := cat.Color("ral-1015")
	if color == nil || color.AdditionalPrice != 7.5 {
		t.Fatalf("expected imported color with surcharge 7.5, got %+v", color)
	}
	if cat.Fallback[catalog.KindColors] || !cat.Fallback[catalog.KindSurfaceTypes] {
		t.Fatalf("unexpected fallback flags: %+v", cat.Fallback)
	}
}

func TestDumpCatalogPrintsNormalizedJSON(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	if err := importFile(ctx, database, writeFile(t, importJSON), false, &bytes.Buffer{}); err != nil {
		t.Fatalf("importFile: %v", err)
	}

	var out bytes.Buffer
	if err := dumpCatalog(ctx, store.New(database, zap.NewNop()), zap.NewNop(), &out); err != nil {
		t.Fatalf("dumpCatalog: %v", err)
	}
	var cat catalog.Catalog
	if err := json.Unmarshal(out.Bytes(), &cat); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if len(cat.Colors) != 1 || cat.Colors[0].RALCode != "RAL 1015" {
		t.Fatalf("unexpected colors in dump: %+v", cat.Colors)
	}
}
