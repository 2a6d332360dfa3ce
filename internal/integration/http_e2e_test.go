//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "bank_reviews/internal/adapters/http_server"
	redisad "bank_reviews/internal/adapters/redis"
	"bank_reviews/internal/adapters/sentiment"
	"bank_reviews/internal/analysis"
	"bank_reviews/internal/app"
	"bank_reviews/internal/csvio"
	"bank_reviews/internal/domain"
	mysqlrepo "bank_reviews/internal/storage/mysql"
)

func migrationsDir(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// stub inference service: negative for complaint-ish text, positive otherwise
func scorerStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		label, score := "POSITIVE", 0.93
		low := strings.ToLower(req.Text)
		if strings.Contains(low, "slow") || strings.Contains(low, "crash") || strings.Contains(low, "never") {
			label, score = "NEGATIVE", 0.97
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"label": label, "score": score})
	}))
}

func TestHTTP_EndToEnd_PipelineThenReports(t *testing.T) {
	// Start isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=bank_reviews",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "bank_reviews")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	// Seed the input file with the canonical scenario rows
	dir := t.TempDir()
	in := filepath.Join(dir, "bank_reviews.csv")
	outCSV := filepath.Join(dir, "bank_reviews_analyzed.csv")
	seed := []domain.Review{
		{Bank: "CBE", Text: "app is slow and crashes", Rating: 3, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Bank: "CBE", Text: "login otp never arrives", Rating: 1, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Bank: "BOA", Text: "great transfer experience", Rating: 5, Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
	}
	if err := csvio.WriteAnalyzed(in, seed); err != nil {
		t.Fatalf("seed csv: %v", err)
	}

	// Wire the real pipeline against the stub scorer
	stub := scorerStub(t)
	defer stub.Close()
	scorer, err := sentiment.NewClient(stub.URL, 100)
	if err != nil {
		t.Fatalf("scorer client: %v", err)
	}
	repo := mysqlrepo.New(db)
	p := app.NewPipeline(
		sentiment.NewAdapter(scorer),
		analysis.NewThemeClassifier(analysis.DefaultThemes()),
		repo,
		app.PipelineOptions{InputCSV: in, OutputCSV: outCSV, SourceTag: "Google Play", KeywordsK: 10, Migrate: false},
	)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("pipeline run: %v", err)
	}

	// API on top of the loaded store, cache backed by miniredis
	mr := miniredis.RunT(t)
	q := app.NewQueryService(repo, redisad.New(mr.Addr(), "", 0), time.Minute)
	srv := server.New()
	srv.MountHandlers(&server.Handlers{Q: q})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// banks: two rows, CBE and BOA
	var banks []struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Reviews int64  `json:"reviews"`
	}
	getJSON(t, ts.URL+"/v1/banks", &banks)
	if len(banks) != 2 {
		t.Fatalf("want 2 banks, got %+v", banks)
	}
	byName := map[string]int64{}
	for _, b := range banks {
		byName[b.Name] = b.ID
	}
	if byName["CBE"] == 0 || byName["BOA"] == 0 {
		t.Fatalf("missing bank ids: %+v", banks)
	}

	// reviews carry the computed themes
	var reviews []struct {
		BankID int64  `json:"bank_id"`
		Text   string `json:"text"`
		Theme  string `json:"theme"`
	}
	getJSON(t, fmt.Sprintf("%s/v1/banks/%d/reviews", ts.URL, byName["CBE"]), &reviews)
	if len(reviews) != 2 {
		t.Fatalf("want 2 CBE reviews, got %+v", reviews)
	}
	themes := map[string]string{}
	for _, rv := range reviews {
		if rv.BankID != byName["CBE"] {
			t.Fatalf("review attached to wrong bank: %+v", rv)
		}
		themes[rv.Text] = rv.Theme
	}
	if themes["app is slow and crashes"] != "Performance, Stability" {
		t.Fatalf("row 1 theme: %q", themes["app is slow and crashes"])
	}
	if themes["login otp never arrives"] != "Login/Access" {
		t.Fatalf("row 2 theme: %q", themes["login otp never arrives"])
	}

	// sentiment stats reflect the stub's labels
	var stats []struct {
		Bank  string `json:"bank"`
		Label string `json:"label"`
		Count int64  `json:"count"`
	}
	getJSON(t, ts.URL+"/v1/stats/sentiment", &stats)
	found := false
	for _, s := range stats {
		if s.Bank == "BOA" && s.Label == "POSITIVE" && s.Count == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing BOA/POSITIVE bucket: %+v", stats)
	}
}

func getJSON(t *testing.T, url string, dst any) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}
