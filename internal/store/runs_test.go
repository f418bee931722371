package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobhunt-harvester/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "harvest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testRun(id string, started time.Time, n int) domain.Run {
	r := domain.Run{
		ID:         id,
		Query:      "Receptionist",
		Location:   "United States",
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		StopReason: "last_page",
		Pages:      1,
		OutputPath: "receptionist_jobs_20261018.csv",
	}
	for i := 0; i < n; i++ {
		r.Listings = append(r.Listings, domain.EnrichedListing{
			ListingSummary: domain.ListingSummary{
				Title:       "Front Desk " + string(rune('A'+i)),
				Company:     "Acme",
				RawLocation: "Austin, TX 78701",
				DetailURL:   "https://www.indeed.com/viewjob?jk=" + string(rune('a'+i)),
			},
			LocationParts:  domain.LocationParts{City: "Austin", State: "TX"},
			Description:    "Greet visitors.",
			Pay:            domain.PayRange{Min: "15", Max: "18", Unit: domain.PayHour},
			EmploymentType: domain.PartTime,
			ValidThrough:   "2026-11-17",
			ApplyURL:       "https://www.indeed.com/viewjob?jk=" + string(rune('a'+i)),
			SourceID:       "jk:" + string(rune('a'+i)),
		})
	}
	return r
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(context.Background(), db.Pool))

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, 1, v)
}

func TestSaveRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	started := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	r := testRun("run-1", started, 3)
	r.Listings[1].DetailFailed = true
	r.Faults = 1
	require.NoError(t, db.SaveRun(ctx, r))

	got, err := db.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Listings)
	assert.Equal(t, 1, got.DetailFaults)
	assert.Equal(t, "last_page", got.StopReason)
	assert.True(t, started.Equal(got.StartedAt))

	ls, err := db.RunListings(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, r.Listings, ls)
}

func TestSaveRunReplaces(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	started := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	require.NoError(t, db.SaveRun(ctx, testRun("run-1", started, 3)))
	require.NoError(t, db.SaveRun(ctx, testRun("run-1", started, 1)))

	ls, err := db.RunListings(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, ls, 1)
}

func TestSaveRunWithoutListings(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.SaveRun(ctx, testRun("empty", time.Now(), 0)))
	ls, err := db.RunListings(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, ls)
}

func TestSaveRunRequiresID(t *testing.T) {
	assert.Error(t, openTestDB(t).SaveRun(context.Background(), domain.Run{}))
}

func TestListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	require.NoError(t, db.SaveRun(ctx, testRun("a", base, 1)))
	require.NoError(t, db.SaveRun(ctx, testRun("b", base.Add(500*time.Millisecond), 1)))
	require.NoError(t, db.SaveRun(ctx, testRun("c", base.Add(time.Hour), 1)))

	runs, err := db.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}

func TestGetRunNotFound(t *testing.T) {
	_, err := openTestDB(t).GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestCleanupOldRuns(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.SaveRun(ctx, testRun("old", time.Now().Add(-100*24*time.Hour), 2)))
	require.NoError(t, db.SaveRun(ctx, testRun("new", time.Now(), 2)))

	n, err := db.CleanupOldRuns(ctx, 90*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	runs, err := db.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "new", runs[0].ID)

	ls, err := db.RunListings(ctx, "old")
	require.NoError(t, err)
	assert.Empty(t, ls)
}
