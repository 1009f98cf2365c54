package culler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nikbrunner/bmr/internal/metrics"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusFound)
	})
	mux.HandleFunc("/gethonly", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func opts() Options {
	return Options{Concurrency: 3, Timeout: 5 * time.Second}
}

func TestCheckURLs_Statuses(t *testing.T) {
	site := newSite(t)
	bookmarks := []model.Bookmark{
		{ID: 1, Title: "ok", URL: site.URL + "/ok"},
		{ID: 2, Title: "missing", URL: site.URL + "/missing"},
		{ID: 3, Title: "gone", URL: site.URL + "/gone"},
		{ID: 4, Title: "broken", URL: site.URL + "/broken"},
		{ID: 5, Title: "redirect", URL: site.URL + "/redirect"},
		{ID: 6, Title: "get only", URL: site.URL + "/gethonly"},
	}

	results := CheckURLs(context.Background(), bookmarks, opts())
	assert.Equal(t, len(results), len(bookmarks))

	want := []Status{Healthy, Dead, Dead, Unreachable, Healthy, Healthy}
	for i, r := range results {
		assert.Check(t, is.Equal(r.Bookmark.ID, bookmarks[i].ID), "results keep input order")
		assert.Check(t, is.Equal(r.Status, want[i]), "bookmark %q", r.Bookmark.Title)
	}
	assert.Check(t, is.Equal(results[1].StatusCode, http.StatusNotFound))
	assert.Check(t, is.Equal(results[3].Error, "Internal Server Error"))
}

func TestCheckURLs_Empty(t *testing.T) {
	assert.Check(t, is.Nil(CheckURLs(context.Background(), nil, opts())))
}

func TestCheckURLs_ConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	results := CheckURLs(context.Background(), []model.Bookmark{{ID: 1, URL: url}}, opts())

	assert.Equal(t, results[0].Status, Unreachable)
	assert.Equal(t, results[0].StatusCode, 0)
	assert.Equal(t, results[0].Error, "Connection refused")
}

func TestCheckURLs_ExcludedDomain(t *testing.T) {
	site := newSite(t)
	bookmarks := []model.Bookmark{{ID: 1, URL: site.URL + "/private"}}

	o := opts()
	o.ExcludeDomains = []string{"127.0.0.1"}
	results := CheckURLs(context.Background(), bookmarks, o)

	assert.Equal(t, results[0].Status, Unreachable)
	assert.Equal(t, results[0].Error, "Possibly private (auth required)")
}

func TestCheckURLs_Progress(t *testing.T) {
	site := newSite(t)
	bookmarks := []model.Bookmark{
		{ID: 1, URL: site.URL + "/ok"},
		{ID: 2, URL: site.URL + "/ok"},
		{ID: 3, URL: site.URL + "/ok"},
	}

	var calls atomic.Int32
	last := 0
	o := opts()
	o.OnProgress = func(completed, total int) {
		calls.Add(1)
		assert.Check(t, is.Equal(total, 3))
		assert.Check(t, completed == last+1, "progress is monotonic")
		last = completed
	}
	CheckURLs(context.Background(), bookmarks, o)

	assert.Equal(t, calls.Load(), int32(3))
	assert.Equal(t, last, 3)
}

func TestCheckURLs_CountsResults(t *testing.T) {
	site := newSite(t)
	counter := metrics.LinkChecksTotal.WithLabelValues("dead")
	before := testutil.ToFloat64(counter)

	CheckURLs(context.Background(), []model.Bookmark{{ID: 1, URL: site.URL + "/gone"}}, opts())

	assert.Equal(t, testutil.ToFloat64(counter), before+1)
}

func TestIsExcludedDomain(t *testing.T) {
	exclude := map[string]bool{"github.com": true}

	assert.Check(t, isExcludedDomain("https://github.com/me/private", exclude))
	assert.Check(t, isExcludedDomain("https://api.github.com/repos", exclude))
	assert.Check(t, !isExcludedDomain("https://notgithub.com", exclude))
	assert.Check(t, !isExcludedDomain("://bad", exclude))
}

func TestNormalizeError(t *testing.T) {
	cases := map[string]string{
		"dial tcp: lookup nope.invalid: no such host":       "DNS failure",
		"context deadline exceeded (Client.Timeout...)":     "Timeout",
		"dial tcp 127.0.0.1:1: connect: connection refused": "Connection refused",
		"x509: certificate signed by unknown authority":     "TLS/certificate error",
		"unsupported protocol scheme \"ftp\"":               "Unsupported URL",
		"something else":                                    "something else",
	}
	for in, want := range cases {
		assert.Check(t, is.Equal(normalizeError(in), want), in)
	}
}

type fakeDeleter struct {
	deleted []int64
	failOn  int64
}

func (f *fakeDeleter) DeleteBookmark(_ context.Context, id int64) error {
	if id == f.failOn {
		return errors.New("boom")
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func TestPrune(t *testing.T) {
	results := []Result{
		{Bookmark: model.Bookmark{ID: 1}, Status: Healthy},
		{Bookmark: model.Bookmark{ID: 2}, Status: Dead},
		{Bookmark: model.Bookmark{ID: 3}, Status: Unreachable},
		{Bookmark: model.Bookmark{ID: 4}, Status: Dead},
	}

	d := &fakeDeleter{}
	n, err := Prune(context.Background(), d, results)

	assert.NilError(t, err)
	assert.Equal(t, n, 2)
	assert.DeepEqual(t, d.deleted, []int64{2, 4})
}

func TestPrune_StopsOnError(t *testing.T) {
	results := []Result{
		{Bookmark: model.Bookmark{ID: 2}, Status: Dead},
		{Bookmark: model.Bookmark{ID: 4}, Status: Dead},
		{Bookmark: model.Bookmark{ID: 5}, Status: Dead},
	}

	d := &fakeDeleter{failOn: 4}
	n, err := Prune(context.Background(), d, results)

	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, n, 1)
	assert.DeepEqual(t, d.deleted, []int64{2})
}
