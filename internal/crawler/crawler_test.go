package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestCrawlStopsAtPageBudget(t *testing.T) {
	var mu sync.Mutex
	hits := map[string]int{}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()

		if r.URL.Path == "/" {
			var b strings.Builder
			b.WriteString("<html><body><p>Karibu kwenye tovuti ya wilaya.</p>")
			for i := 1; i <= 20; i++ {
				fmt.Fprintf(&b, `<a href="/page%d">page %d</a>`, i, i)
			}
			b.WriteString("</body></html>")
			w.Write([]byte(b.String()))
			return
		}
		fmt.Fprintf(w, "<html><body><p>Content of %s</p></body></html>", r.URL.Path)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(8, 12000, 5*time.Second)
	var pages []string
	c.OnPage = func(u string) { pages = append(pages, u) }

	text, err := c.Crawl(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(pages) != 8 {
		t.Errorf("fetched %d pages, want 8", len(pages))
	}
	mu.Lock()
	total := 0
	for _, n := range hits {
		total += n
	}
	mu.Unlock()
	if total != 8 {
		t.Errorf("server saw %d requests, want 8", total)
	}
	if !strings.Contains(text, "Karibu kwenye tovuti ya wilaya.") {
		t.Error("seed page text missing from result")
	}
}

func TestCrawlStaysOnHost(t *testing.T) {
	var offDomain int32
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offDomain++
	}))
	defer other.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<p>local page</p>
			<a href="%s/external">external</a>
			<a href="mailto:info@wilaya.go.tz">mail</a>
			<a href="#section">anchor</a>
		</body></html>`, other.URL)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(8, 12000, 5*time.Second)
	if _, err := c.Crawl(context.Background(), srv.URL); err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if offDomain != 0 {
		t.Errorf("off-domain server was hit %d times", offDomain)
	}
}

func TestCrawlDeduplicatesURLs(t *testing.T) {
	var mu sync.Mutex
	hits := map[string]int{}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()
		w.Write([]byte(`<html><body>
			<a href="/about">a</a>
			<a href="/about/">b</a>
			<a href="/about#team">c</a>
		</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(8, 12000, 5*time.Second)
	if _, err := c.Crawl(context.Background(), srv.URL); err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if hits["/about"]+hits["/about/"] != 1 {
		t.Errorf("/about variants fetched %d times, want 1", hits["/about"]+hits["/about/"])
	}
}

func TestCrawlIgnoresQueryVariants(t *testing.T) {
	var mu sync.Mutex
	hits := map[string]int{}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()
		w.Write([]byte(`<html><body>
			<a href="/about?ref=menu">a</a>
			<a href="/about?ref=footer">b</a>
			<a href="/about">c</a>
		</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(8, 12000, 5*time.Second)
	if _, err := c.Crawl(context.Background(), srv.URL); err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if hits["/about"] != 1 {
		t.Errorf("query variants of /about fetched %d times, want 1", hits["/about"])
	}
}

func TestCrawlSkipsErrorPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>home</p><a href="/missing">x</a><a href="/ok">y</a></body></html>`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>still here</p></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(8, 12000, 5*time.Second)
	text, err := c.Crawl(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if !strings.Contains(text, "still here") {
		t.Error("crawl should continue past a 404")
	}
}

func TestCrawlTruncatesToCharBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html><body><p>%s</p></body></html>", strings.Repeat("maji ", 1000))
	}))
	defer srv.Close()

	c := New(8, 100, 5*time.Second)
	text, err := c.Crawl(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(text) > 100 {
		t.Errorf("text length = %d, budget 100", len(text))
	}
}

func TestExtractDropsScriptAndStyle(t *testing.T) {
	body := `<html><head><style>body { color: red }</style></head>
	<body><script>var hidden = "secret";</script><p>visible text</p></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := New(1, 12000, 5*time.Second)
	got, err := c.Crawl(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if !strings.Contains(got, "visible text") {
		t.Error("visible text missing")
	}
	if strings.Contains(got, "secret") || strings.Contains(got, "color: red") {
		t.Errorf("script/style contents leaked into %q", got)
	}
}

func TestCrawlAllPagesUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(8, 12000, 5*time.Second)
	if _, err := c.Crawl(context.Background(), srv.URL); err == nil {
		t.Error("expected an error when nothing can be fetched")
	}
}

func TestCacheCrawlsOnce(t *testing.T) {
	var hits int32
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.Write([]byte(`<html><body><p>site text</p></body></html>`))
	}))
	defer srv.Close()

	cache := NewCache(New(8, 12000, 5*time.Second), srv.URL, time.Hour)

	for i := 0; i < 3; i++ {
		text, err := cache.Get(context.Background())
		if err != nil {
			t.Fatalf("Get %d: %v", i, err)
		}
		if !strings.Contains(text, "site text") {
			t.Errorf("Get %d: unexpected text %q", i, text)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if hits != 1 {
		t.Errorf("server hits = %d, want 1 within the TTL", hits)
	}
}

func TestCacheExpires(t *testing.T) {
	var hits int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.Write([]byte(`<html><body><p>site text</p></body></html>`))
	}))
	defer srv.Close()

	cache := NewCache(New(8, 12000, 5*time.Second), srv.URL, time.Hour)
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if _, err := cache.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	now = now.Add(2 * time.Hour)
	if _, err := cache.Get(context.Background()); err != nil {
		t.Fatalf("Get after expiry: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if hits != 2 {
		t.Errorf("server hits = %d, want 2 after expiry", hits)
	}
}

func TestCacheServesStaleOnFailure(t *testing.T) {
	var fail bool
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		f := fail
		mu.Unlock()
		if f {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`<html><body><p>site text</p></body></html>`))
	}))
	defer srv.Close()

	cache := NewCache(New(8, 12000, 5*time.Second), srv.URL, time.Hour)
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if _, err := cache.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}

	mu.Lock()
	fail = true
	mu.Unlock()
	now = now.Add(2 * time.Hour)

	text, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("stale Get: %v", err)
	}
	if !strings.Contains(text, "site text") {
		t.Errorf("expected stale text, got %q", text)
	}
}
