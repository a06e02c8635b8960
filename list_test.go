package transloader_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/six8/transloader"
)

// ── Test Helpers ──────────────────────────────────────

// listPage builds a list response with sequentially numbered items
// starting at first.
func listPage(first, n, count int) map[string]any {
	items := make([]any, 0, n)
	for i := range n {
		items = append(items, map[string]any{
			"id": fmt.Sprintf("a%04d", first+i),
			"ok": "ASSEMBLY_COMPLETED",
		})
	}
	return map[string]any{"count": count, "items": items}
}

// pagedClient serves the given pages in order of the requested page
// number and counts list fetches.
func pagedClient(t *testing.T, fetches *atomic.Int64, pages map[int]map[string]any) *transloader.Client {
	t.Helper()
	return newTestClient(t, func(r chi.Router) {
		r.Get("/assemblies", func(w http.ResponseWriter, req *http.Request) {
			fetches.Add(1)
			p := requestParams(t, req)
			page := int(p["page"].(float64))
			doc, ok := pages[page]
			if !ok {
				doc = map[string]any{"count": 0, "items": []any{}}
			}
			writeJSON(t, w, http.StatusOK, doc)
		})
	})
}

func collect(t *testing.T, it *transloader.AssemblyIter) []*transloader.Assembly {
	t.Helper()
	var out []*transloader.Assembly
	for it.Next(context.Background()) {
		out = append(out, it.Assembly())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}
	return out
}

// ── Pagination ────────────────────────────────────────

func TestAssemblies_SinglePage(t *testing.T) {
	var fetches atomic.Int64
	c := pagedClient(t, &fetches, map[int]map[string]any{
		1: listPage(1, 2, 2),
	})

	got := collect(t, c.Assemblies())
	if len(got) != 2 {
		t.Fatalf("expected 2 assemblies, got %d", len(got))
	}
	// Count satisfied by page one; no second fetch happens.
	if n := fetches.Load(); n != 1 {
		t.Errorf("expected 1 page fetch, got %d", n)
	}
}

func TestAssemblies_MultiPage(t *testing.T) {
	var fetches atomic.Int64
	c := pagedClient(t, &fetches, map[int]map[string]any{
		1: listPage(1, 100, 250),
		2: listPage(101, 100, 250),
		3: listPage(201, 50, 250),
	})

	got := collect(t, c.Assemblies())
	if len(got) != 250 {
		t.Fatalf("expected 250 assemblies, got %d", len(got))
	}
	if n := fetches.Load(); n != 3 {
		t.Errorf("expected 3 page fetches, got %d", n)
	}

	// Server order is preserved end to end.
	for i, a := range got {
		wantURL := fmt.Sprintf(
			"http://jsondb.transloadit.com.s3.amazonaws.com/assemblies/a%04d.json", i+1)
		if a.URL() != wantURL {
			t.Fatalf("assembly %d URL = %q, want %q", i, a.URL(), wantURL)
		}
	}
}

func TestAssemblies_EmptyPageStopsDespiteCount(t *testing.T) {
	// The server promises 500 results but page two is empty. The empty
	// page is the authoritative stop signal.
	var fetches atomic.Int64
	c := pagedClient(t, &fetches, map[int]map[string]any{
		1: listPage(1, 100, 500),
	})

	got := collect(t, c.Assemblies())
	if len(got) != 100 {
		t.Fatalf("expected 100 assemblies, got %d", len(got))
	}
	if n := fetches.Load(); n != 2 {
		t.Errorf("expected 2 page fetches, got %d", n)
	}
}

func TestAssemblies_Empty(t *testing.T) {
	var fetches atomic.Int64
	c := pagedClient(t, &fetches, nil)

	got := collect(t, c.Assemblies())
	if len(got) != 0 {
		t.Fatalf("expected no assemblies, got %d", len(got))
	}
	if n := fetches.Load(); n != 1 {
		t.Errorf("expected 1 page fetch, got %d", n)
	}
}

// ── Pre-seeded info ───────────────────────────────────

func TestAssemblies_ItemsCarryInfo(t *testing.T) {
	// Listed handles point at jsondb URLs that are unreachable from the
	// test; reads must come from the pre-seeded list item instead.
	var fetches atomic.Int64
	c := pagedClient(t, &fetches, map[int]map[string]any{
		1: listPage(1, 1, 1),
	})

	got := collect(t, c.Assemblies())
	if len(got) != 1 {
		t.Fatalf("expected 1 assembly, got %d", len(got))
	}

	ctx := context.Background()
	completed, err := got[0].Completed(ctx)
	if err != nil {
		t.Fatalf("Completed: %v", err)
	}
	if !completed {
		t.Error("expected completed from pre-seeded info")
	}
	if v, err := got[0].Field(ctx, "id"); err != nil || v != "a0001" {
		t.Errorf("Field(id) = %v, %v", v, err)
	}
}

// ── Request fields ────────────────────────────────────

func TestAssemblies_RequestParams(t *testing.T) {
	var gotParams map[string]any
	c := newTestClient(t, func(r chi.Router) {
		r.Get("/assemblies", func(w http.ResponseWriter, req *http.Request) {
			gotParams = requestParams(t, req)
			writeJSON(t, w, http.StatusOK, map[string]any{"count": 0, "items": []any{}})
		})
	})

	it := c.Assemblies(
		transloader.WithPage(3),
		transloader.WithPageSize(25),
		transloader.WithType("completed"),
		transloader.WithFromDate(time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)),
		transloader.WithKeywords("cat video"),
	)
	if it.Next(context.Background()) {
		t.Fatal("expected empty iteration")
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}

	if gotParams["page"] != float64(3) {
		t.Errorf("page = %v", gotParams["page"])
	}
	if gotParams["pagesize"] != float64(25) {
		t.Errorf("pagesize = %v", gotParams["pagesize"])
	}
	if gotParams["type"] != "completed" {
		t.Errorf("type = %v", gotParams["type"])
	}
	// Datetime fields use the dash-separated format.
	if gotParams["fromdate"] != "2026-08-01 09:30:00" {
		t.Errorf("fromdate = %v", gotParams["fromdate"])
	}
	if gotParams["keywords"] != "cat video" {
		t.Errorf("keywords = %v", gotParams["keywords"])
	}
	if _, ok := gotParams["todate"]; ok {
		t.Errorf("unset todate present: %v", gotParams["todate"])
	}
}

func TestAssemblies_Defaults(t *testing.T) {
	var gotParams map[string]any
	c := newTestClient(t, func(r chi.Router) {
		r.Get("/assemblies", func(w http.ResponseWriter, req *http.Request) {
			gotParams = requestParams(t, req)
			writeJSON(t, w, http.StatusOK, map[string]any{"count": 0, "items": []any{}})
		})
	})

	it := c.Assemblies()
	_ = it.Next(context.Background())
	if err := it.Err(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}

	if gotParams["page"] != float64(1) {
		t.Errorf("page = %v", gotParams["page"])
	}
	if gotParams["pagesize"] != float64(100) {
		t.Errorf("pagesize = %v", gotParams["pagesize"])
	}
	if gotParams["type"] != "all" {
		t.Errorf("type = %v", gotParams["type"])
	}
}

// ── Failure propagation ───────────────────────────────

func TestAssemblies_RemoteError(t *testing.T) {
	c := newTestClient(t, func(r chi.Router) {
		r.Get("/assemblies", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, http.StatusUnauthorized, map[string]any{
				"error":   "GET_ACCOUNT_UNKNOWN_AUTH_KEY",
				"message": "unknown key",
			})
		})
	})

	it := c.Assemblies()
	if it.Next(context.Background()) {
		t.Fatal("expected Next to fail")
	}
	var re *transloader.RemoteError
	if !errors.As(it.Err(), &re) {
		t.Fatalf("expected RemoteError, got %v", it.Err())
	}
	if re.Code != "GET_ACCOUNT_UNKNOWN_AUTH_KEY" {
		t.Errorf("Code = %q", re.Code)
	}

	// The iterator stays failed; it does not refetch.
	if it.Next(context.Background()) {
		t.Fatal("expected iterator to stay terminated")
	}
}
