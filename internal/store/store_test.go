package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/relwatch/relwatch/internal/config"
	"github.com/relwatch/relwatch/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.New(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "relwatch-test.db"),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return New(db)
}

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func TestGetRepositoryMissingIsNil(t *testing.T) {
	st := newTestStore(t)
	rec, err := st.GetRepository(context.Background(), "no/such")
	if err != nil {
		t.Fatalf("GetRepository: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil, got %+v", rec)
	}
}

func TestUpsertInsertThenPartialUpdate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.UpsertRepository(ctx, "foo/bar", RepoUpdate{
		URL:              "https://github.com/foo/bar",
		Platform:         "github",
		LastKnownVersion: strp("v1.0.0"),
	})
	if err != nil {
		t.Fatalf("insert upsert: %v", err)
	}

	rec, err := st.GetRepository(ctx, "foo/bar")
	if err != nil || rec == nil {
		t.Fatalf("GetRepository: %v %v", rec, err)
	}
	if rec.Platform != "github" || rec.LastKnownVersion == nil || *rec.LastKnownVersion != "v1.0.0" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.LastAlertedVersion != nil || rec.Severity != nil {
		t.Fatalf("unset fields must stay NULL: %+v", rec)
	}

	// Partial update: only the severity moves, everything else is retained.
	err = st.UpsertRepository(ctx, "foo/bar", RepoUpdate{
		Severity:         strp("HIGH"),
		MandatoryUpgrade: boolp(true),
	})
	if err != nil {
		t.Fatalf("partial upsert: %v", err)
	}
	rec, err = st.GetRepository(ctx, "foo/bar")
	if err != nil {
		t.Fatalf("GetRepository: %v", err)
	}
	if rec.URL != "https://github.com/foo/bar" || *rec.LastKnownVersion != "v1.0.0" {
		t.Fatalf("partial update clobbered fields: %+v", rec)
	}
	if rec.Severity == nil || *rec.Severity != "HIGH" || !rec.MandatoryUpgrade {
		t.Fatalf("updates not applied: %+v", rec)
	}
}

func TestUpsertAdvancesVersionMarkers(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.UpsertRepository(ctx, "foo/bar", RepoUpdate{
		URL: "u", Platform: "github", LastKnownVersion: strp("v1.0.0"),
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.UpsertRepository(ctx, "foo/bar", RepoUpdate{
		LastKnownVersion: strp("v1.1.0"), LastAlertedVersion: strp("v1.1.0"),
	}); err != nil {
		t.Fatal(err)
	}
	rec, _ := st.GetRepository(ctx, "foo/bar")
	if *rec.LastKnownVersion != "v1.1.0" || *rec.LastAlertedVersion != "v1.1.0" {
		t.Fatalf("markers did not advance: %+v", rec)
	}
}

func TestListRepositoriesOrdered(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"zeta/z", "alpha/a"} {
		if err := st.UpsertRepository(ctx, id, RepoUpdate{URL: "u", Platform: "github"}); err != nil {
			t.Fatal(err)
		}
	}
	recs, err := st.ListRepositories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].RepoID != "alpha/a" || recs[1].RepoID != "zeta/z" {
		t.Fatalf("unexpected order: %+v", recs)
	}
}

func TestAlertHistoryAppendAndList(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, v := range []string{"v1.0.0", "v1.1.0"} {
		if err := st.AppendAlertHistory(ctx, "foo/bar", v, "HIGH", false, "summary "+v); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.AppendAlertHistory(ctx, "other/repo", "v2.0.0", "CRITICAL", true, "other"); err != nil {
		t.Fatal(err)
	}

	all, err := st.ListAlertHistory(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(all))
	}
	// Newest first: the last insert wins ties on alerted_at via id.
	if all[0].RepoID != "other/repo" {
		t.Fatalf("unexpected order: %+v", all)
	}

	scoped, err := st.ListAlertHistory(ctx, "foo/bar", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(scoped) != 2 || scoped[0].Version != "v1.1.0" {
		t.Fatalf("unexpected scoped history: %+v", scoped)
	}

	limited, err := st.ListAlertHistory(ctx, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit ignored: %+v", limited)
	}
}
