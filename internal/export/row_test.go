package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobhunt-harvester/internal/domain"
)

var published = time.Date(2026, 10, 18, 14, 0, 0, 0, time.UTC)

func listing(title string) domain.EnrichedListing {
	return domain.EnrichedListing{
		ListingSummary: domain.ListingSummary{Title: title, Company: "Acme Dental", DetailURL: "https://www.indeed.com/viewjob?jk=1"},
		LocationParts:  domain.LocationParts{City: "Austin", State: "TX"},
		Description:    "Greet patients, answer phones",
		Pay:            domain.PayRange{Min: "15", Max: "18", Unit: domain.PayHour},
		EmploymentType: domain.FullTime,
		ValidThrough:   "2026-11-17",
		ApplyURL:       "https://www.indeed.com/viewjob?jk=1",
	}
}

func TestBuildRow_Metadata(t *testing.T) {
	r := BuildRow(Meta{Query: "Front Desk", Published: published}, nil)

	assert.Equal(t, []string{
		"slug", "title", "meta_description", "publish_date", "categories", "tags", "feature_image_url",
	}, r.Header)
	assert.Equal(t, []string{
		"front-desk-jobs-usa-hiring-now",
		"Top 0 Front Desk Jobs in USA (Hiring Now)",
		"Latest Front Desk jobs with pay, location, and direct apply links.",
		"2026-10-18",
		DefaultCategory,
		"Front Desk, hiring now, USA jobs",
		"",
	}, r.Values)
}

func TestBuildRow_ListingColumns(t *testing.T) {
	r := BuildRow(Meta{Query: "Receptionist", Published: published}, []domain.EnrichedListing{
		listing("Front Desk Receptionist"),
		listing("Medical Receptionist"),
	})

	require.Len(t, r.Header, 7+2*11)
	assert.Len(t, r.Values, len(r.Header))
	assert.Equal(t, "job_1_desc_full", r.Header[7])
	assert.Equal(t, "job_2_apply_url", r.Header[len(r.Header)-1])

	v, ok := r.Get("title")
	require.True(t, ok)
	assert.Equal(t, "Top 2 Receptionist Jobs in USA (Hiring Now)", v)

	for k, want := range map[string]string{
		"job_1_title":         "Front Desk Receptionist",
		"job_2_title":         "Medical Receptionist",
		"job_1_pay_min":       "15",
		"job_1_pay_unit":      "hour",
		"job_2_type":          "Full-time",
		"job_2_city":          "Austin",
		"job_2_state":         "TX",
		"job_1_valid_through": "2026-11-17",
	} {
		got, ok := r.Get(k)
		require.True(t, ok, k)
		assert.Equal(t, want, got, k)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "receptionist_jobs_20261018.csv", FileName("", "Receptionist", published))
	assert.Equal(t, "front_desk_jobs_20261018.csv", FileName("{query}_jobs_{date}.csv", "Front  Desk", published))
	assert.Equal(t, "out-20261018.csv", FileName("out-{date}.csv", "x", published))
}

func TestFileNameStaysInOutputDir(t *testing.T) {
	cases := map[string]string{
		"../../x":          "____x_jobs_20261018.csv",
		`..\..\x`:          "____x_jobs_20261018.csv",
		"/etc/cron.d/jobs": "_etc_cron.d_jobs_jobs_20261018.csv",
		"..":               "__jobs_20261018.csv",
	}
	for query, want := range cases {
		name := FileName("", query, published)
		assert.Equal(t, want, name, query)
		assert.True(t, filepath.IsLocal(name), query)
		assert.Equal(t, name, filepath.Base(name), query)
	}
	assert.Equal(t, "_", FileName("{query}", ".", published))
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "receptionist_jobs_20261018.csv")
	row := BuildRow(Meta{Query: "Receptionist", Published: published}, []domain.EnrichedListing{listing("Front Desk, Nights")})

	require.NoError(t, WriteCSV(path, row))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, row.Header, records[0])
	assert.Equal(t, row.Values, records[1])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file cleaned up")
}
