package router

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/fieldservice-be/internal/api/handler"
	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
	"github.com/cuongbtq/fieldservice-be/internal/report"
	"github.com/cuongbtq/fieldservice-be/internal/scan"
	"github.com/cuongbtq/fieldservice-be/internal/service"
	"github.com/cuongbtq/fieldservice-be/internal/storage"
	"github.com/cuongbtq/fieldservice-be/shared/logger"
)

const (
	cronSecret = "cron-secret"
	orgID      = "11111111-1111-1111-1111-111111111111"
	jobID      = "22222222-2222-2222-2222-222222222222"
	jtID       = "33333333-3333-3333-3333-333333333333"
	reportID   = "44444444-4444-4444-4444-444444444444"
)

var (
	manager    = &model.User{ID: "u-manager", OrganizationID: orgID, Email: "m@example.com", FullName: "Mia Manager", Role: domain.RoleManager, IsActive: true}
	technician = &model.User{ID: "u-tech", OrganizationID: orgID, Email: "t@example.com", FullName: "Tom Tech", Role: domain.RoleTechnician, IsActive: true}
)

type fakeAuth struct {
	tokens    map[string]*model.User
	err       error
	loggedOut []string
	refreshed []string
}

func (f *fakeAuth) CurrentUser(_ context.Context, token string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.tokens[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return u, nil
}

func (f *fakeAuth) Logout(_ context.Context, userID string) {
	f.loggedOut = append(f.loggedOut, userID)
}

func (f *fakeAuth) Refresh(_ context.Context, userID string) {
	f.refreshed = append(f.refreshed, userID)
}

type fakeScans struct {
	orgs   []string
	result scan.Result
	err    error
}

func (f *fakeScans) Overdue(_ context.Context, org string) (scan.Result, error) {
	f.orgs = append(f.orgs, org)
	return f.result, f.err
}

func (f *fakeScans) Contracts(_ context.Context, org string) (scan.Result, error) {
	f.orgs = append(f.orgs, org)
	return f.result, f.err
}

type fakeJobs struct {
	jobs      []model.Job
	hasMore   bool
	created   *service.NewJob
	deleteErr error
	gotCursor *storage.JobCursor
}

func (f *fakeJobs) Get(_ context.Context, _ *model.User, id string) (*model.Job, error) {
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			return &f.jobs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeJobs) List(_ context.Context, _ *model.User, _ string, _ int, cursor *storage.JobCursor) ([]model.Job, bool, error) {
	f.gotCursor = cursor
	return f.jobs, f.hasMore, nil
}

func (f *fakeJobs) Create(_ context.Context, u *model.User, in service.NewJob) (*model.Job, error) {
	f.created = &in
	return &model.Job{ID: jobID, OrganizationID: u.OrganizationID, JobNumber: in.JobNumber, ScheduledStart: in.ScheduledStart, Status: domain.JobStatusPending}, nil
}

func (f *fakeJobs) Delete(context.Context, *model.User, string) error {
	return f.deleteErr
}

type fakeAssignments struct {
	accepted []string
	err      error
}

func (f *fakeAssignments) Accept(_ context.Context, _ *model.User, jt, job string) error {
	f.accepted = append(f.accepted, jt+"/"+job)
	return f.err
}

func (f *fakeAssignments) Decline(context.Context, *model.User, string) error { return f.err }

func (f *fakeAssignments) ListForTechnician(context.Context, *model.User) ([]model.JobTechnician, error) {
	return []model.JobTechnician{{ID: jtID, JobID: jobID, Status: domain.AssignmentStatusPending}}, nil
}

type reportStore struct{}

func (reportStore) GetReport(_ context.Context, org, id string) (*model.Report, error) {
	if org != orgID || id != reportID {
		return nil, domain.ErrNotFound
	}
	return &model.Report{ID: reportID, OrganizationID: orgID, FileName: "photo.png", MimeType: "image/png", StoragePath: "org/photo.png"}, nil
}

type pngBlobs struct{ data []byte }

func (b pngBlobs) Read(string) ([]byte, error) { return b.data, nil }

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for x := 0; x < 8; x++ {
		img.Set(x, 3, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeGoogle struct{}

func (fakeGoogle) AuthURL(state string) string { return "https://accounts.example/auth?state=" + state }

func (fakeGoogle) Exchange(_ context.Context, code string) (string, error) {
	if code == "bad" {
		return "", errors.New("invalid_grant")
	}
	return "refresh-" + code, nil
}

type fakeUsers struct{ tokens map[string]string }

func (f *fakeUsers) SetGoogleRefreshToken(_ context.Context, _, userID, token string) error {
	f.tokens[userID] = token
	return nil
}

type fakeVendors struct{ created []*model.Vendor }

func (f *fakeVendors) ListVendors(context.Context, string) ([]model.Vendor, error) {
	return []model.Vendor{{ID: "v1", Name: "Acme Parts", IsActive: true}}, nil
}

func (f *fakeVendors) CreateVendor(_ context.Context, v *model.Vendor) error {
	f.created = append(f.created, v)
	return nil
}

type fakeInbox struct{ readAll int }

func (f *fakeInbox) List(context.Context, string, string, int) ([]model.Notification, error) {
	return []model.Notification{{
		ID: "n1", Type: domain.NotificationJobOverdue, Message: `Job "Boiler" is now overdue`,
		RelatedEntityType: sql.NullString{String: domain.EntityJob, Valid: true},
		RelatedEntityID:   sql.NullString{String: jobID, Valid: true},
	}}, nil
}

func (f *fakeInbox) UnreadCount(context.Context, string, string) (int, error) { return 3, nil }

func (f *fakeInbox) MarkRead(_ context.Context, _, _, id string) error {
	if id != "55555555-5555-5555-5555-555555555555" {
		return domain.ErrNotFound
	}
	return nil
}

func (f *fakeInbox) MarkAllRead(context.Context, string, string) (int64, error) {
	f.readAll++
	return 3, nil
}

type testEnv struct {
	engine      *gin.Engine
	auth        *fakeAuth
	scans       *fakeScans
	jobs        *fakeJobs
	assignments *fakeAssignments
	users       *fakeUsers
	vendors     *fakeVendors
	inbox       *fakeInbox
}

func newTestEnv(t *testing.T, withGoogle bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		auth: &fakeAuth{tokens: map[string]*model.User{
			"manager-token": manager,
			"tech-token":    technician,
		}},
		scans:       &fakeScans{},
		jobs:        &fakeJobs{},
		assignments: &fakeAssignments{},
		users:       &fakeUsers{tokens: map[string]string{}},
		vendors:     &fakeVendors{},
		inbox:       &fakeInbox{},
	}

	deps := &handler.Dependencies{
		Logger:      logger.NewNop(),
		ServiceName: "fieldservice-api",
		PublicURL:   "https://app.example/",
		CronSecret:  cronSecret,
		Auth:        env.auth,
		Scans:       env.scans,
		Jobs:        env.jobs,
		Assignments: env.assignments,
		Reports:     report.NewService(reportStore{}, pngBlobs{data: samplePNG(t)}, logger.NewNop()),
		Users:       env.users,
		Vendors:     env.vendors,
		Inbox:       env.inbox,
	}
	if withGoogle {
		deps.Google = fakeGoogle{}
	}
	env.engine = SetupRouter(deps)
	return env
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fieldservice-api", decode(t, w)["service"])
}

func TestScanAuth(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		token     string
		wantCode  int
		wantScope string
	}{
		{"cron secret scans every org", "/jobs/check-overdue", cronSecret, http.StatusOK, ""},
		{"manager scans own org", "/contracts/scan", "manager-token", http.StatusOK, orgID},
		{"technician forbidden", "/contract-notifications", "tech-token", http.StatusForbidden, ""},
		{"no token", "/jobs/check-overdue", "", http.StatusUnauthorized, ""},
		{"wrong secret", "/jobs/check-overdue", "nope", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, false)
			env.scans.result = scan.Result{Checked: 4, Updated: 1, Expiring: 1, Expired: 2}

			w := env.do(http.MethodGet, tt.path, tt.token, "")
			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				require.Equal(t, []string{tt.wantScope}, env.scans.orgs)
				assert.Equal(t, true, decode(t, w)["success"])
			} else {
				assert.Empty(t, env.scans.orgs)
			}
		})
	}
}

func TestScanResponses(t *testing.T) {
	env := newTestEnv(t, false)
	env.scans.result = scan.Result{Checked: 5, Updated: 2, Expiring: 1, Expired: 1, Failed: 1}

	body := decode(t, env.do(http.MethodGet, "/jobs/check-overdue", cronSecret, ""))
	assert.EqualValues(t, 5, body["checked"])
	assert.EqualValues(t, 2, body["updated"])
	assert.EqualValues(t, 1, body["failed"])
	assert.NotContains(t, body, "skipped")

	body = decode(t, env.do(http.MethodPost, "/contract-notifications", cronSecret, ""))
	assert.EqualValues(t, 1, body["expiring"])
	assert.EqualValues(t, 1, body["expired"])

	env.scans.result = scan.Result{Skipped: true}
	body = decode(t, env.do(http.MethodGet, "/contracts/scan", cronSecret, ""))
	assert.Equal(t, true, body["skipped"])
}

func TestScanError(t *testing.T) {
	env := newTestEnv(t, false)
	env.scans.err = errors.New("connection reset")

	w := env.do(http.MethodGet, "/jobs/check-overdue", cronSecret, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("cookie token", func(t *testing.T) {
		env := newTestEnv(t, false)
		req := httptest.NewRequest(http.MethodGet, "/user/current", nil)
		req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: "manager-token"})
		w := httptest.NewRecorder()
		env.engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, manager.Email, body["email"])
		assert.Equal(t, false, body["google_connected"])
	})

	t.Run("lookup unavailable", func(t *testing.T) {
		env := newTestEnv(t, false)
		env.auth.err = errors.Wrap(domain.ErrUnavailable, "pool exhausted")

		w := env.do(http.MethodGet, "/user/current", "manager-token", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		env := newTestEnv(t, false)
		w := env.do(http.MethodGet, "/user/current", "stale", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(http.MethodPost, "/auth/logout", "tech-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{technician.ID}, env.auth.loggedOut)
}

func TestJobsRoutes(t *testing.T) {
	created := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("list with next cursor", func(t *testing.T) {
		env := newTestEnv(t, false)
		env.jobs.jobs = []model.Job{{ID: jobID, JobNumber: "J-1", Status: domain.JobStatusPending, CreatedAt: created}}
		env.jobs.hasMore = true

		w := env.do(http.MethodGet, "/jobs?status=pending&page_size=1", "manager-token", "")
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		next, _ := body["next_cursor"].(string)
		require.NotEmpty(t, next)

		w = env.do(http.MethodGet, "/jobs?cursor="+next, "manager-token", "")
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, env.jobs.gotCursor)
		assert.Equal(t, jobID, env.jobs.gotCursor.JobID)
		assert.True(t, created.Equal(env.jobs.gotCursor.CreatedAt))
	})

	t.Run("bad status filter", func(t *testing.T) {
		env := newTestEnv(t, false)
		w := env.do(http.MethodGet, "/jobs?status=lost", "manager-token", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get missing job", func(t *testing.T) {
		env := newTestEnv(t, false)
		w := env.do(http.MethodGet, "/jobs/"+jobID, "manager-token", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("create", func(t *testing.T) {
		env := newTestEnv(t, false)
		w := env.do(http.MethodPost, "/jobs", "manager-token",
			`{"job_number":"J-9","scheduled_start":"2026-06-01T08:00:00Z","scheduled_end":"2026-06-01T10:00:00Z"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, env.jobs.created)
		assert.Equal(t, "J-9", env.jobs.created.JobNumber)
		require.NotNil(t, env.jobs.created.ScheduledEnd)
	})

	t.Run("create rejects bad timestamp", func(t *testing.T) {
		env := newTestEnv(t, false)
		w := env.do(http.MethodPost, "/jobs", "manager-token", `{"job_number":"J-9","scheduled_start":"tomorrow"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, env.jobs.created)
	})

	t.Run("delete forbidden", func(t *testing.T) {
		env := newTestEnv(t, false)
		env.jobs.deleteErr = errors.Wrap(domain.ErrForbidden, "role technician")
		w := env.do(http.MethodDelete, "/jobs/"+jobID+"/delete", "tech-token", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		env := newTestEnv(t, false)
		w := env.do(http.MethodDelete, "/jobs/"+jobID+"/delete", "manager-token", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decode(t, w)["success"])
	})
}

func TestTechnicianRoutes(t *testing.T) {
	t.Run("accept", func(t *testing.T) {
		env := newTestEnv(t, false)
		w := env.do(http.MethodPost, "/technician/accept-job", "tech-token",
			`{"jobTechnicianId":"`+jtID+`","jobId":"`+jobID+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{jtID + "/" + jobID}, env.assignments.accepted)
	})

	t.Run("accept missing job id", func(t *testing.T) {
		env := newTestEnv(t, false)
		w := env.do(http.MethodPost, "/technician/accept-job", "tech-token", `{"jobTechnicianId":"`+jtID+`"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, env.assignments.accepted)
	})

	t.Run("manager cannot answer assignments", func(t *testing.T) {
		env := newTestEnv(t, false)
		w := env.do(http.MethodPost, "/technician/decline-job", "manager-token", `{"jobTechnicianId":"`+jtID+`"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("decline of someone else's assignment", func(t *testing.T) {
		env := newTestEnv(t, false)
		env.assignments.err = domain.ErrNotFound
		w := env.do(http.MethodPost, "/technician/decline-job", "tech-token", `{"jobTechnicianId":"`+jtID+`"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		env := newTestEnv(t, false)
		w := env.do(http.MethodGet, "/technician/jobs", "tech-token", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode(t, w)["assignments"], 1)
	})
}

func TestReportRoutes(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		disposition string
	}{
		{"view converts image to pdf", "/view", `inline; filename="photo.pdf"`},
		{"view-pdf", "/view-pdf", `inline; filename="photo.pdf"`},
		{"download", "/download", `attachment; filename="photo.pdf"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, false)

			w := env.do(http.MethodGet, "/reports/"+reportID+tt.path, "tech-token", "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.disposition, w.Header().Get("Content-Disposition"))
			assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
		})
	}
}

func TestReportRoutes_Errors(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(http.MethodGet, "/reports/"+jobID+"/view", "tech-token", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/reports/not-a-uuid/view", "tech-token", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGoogleRoutes(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		env := newTestEnv(t, false)
		w := env.do(http.MethodGet, "/google/auth/initiate", "", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("initiate then callback", func(t *testing.T) {
		env := newTestEnv(t, true)

		w := env.do(http.MethodGet, "/google/auth/initiate", "", "")
		require.Equal(t, http.StatusFound, w.Code)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		state := cookies[0].Value
		assert.Equal(t, "https://accounts.example/auth?state="+state, w.Header().Get("Location"))

		req := httptest.NewRequest(http.MethodGet, "/google/auth/callback?code=abc&state="+state, nil)
		req.AddCookie(cookies[0])
		w = httptest.NewRecorder()
		env.engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://app.example/settings/google/success?refresh_token=refresh-abc", w.Header().Get("Location"))
	})

	t.Run("callback state mismatch", func(t *testing.T) {
		env := newTestEnv(t, true)
		req := httptest.NewRequest(http.MethodGet, "/google/auth/callback?code=abc&state=forged", nil)
		req.AddCookie(&http.Cookie{Name: "google_oauth_state", Value: "real"})
		w := httptest.NewRecorder()
		env.engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://app.example/settings/google/error?error=invalid_state", w.Header().Get("Location"))
	})

	t.Run("callback exchange failure", func(t *testing.T) {
		env := newTestEnv(t, true)
		req := httptest.NewRequest(http.MethodGet, "/google/auth/callback?code=bad&state=s1", nil)
		req.AddCookie(&http.Cookie{Name: "google_oauth_state", Value: "s1"})
		w := httptest.NewRecorder()
		env.engine.ServeHTTP(w, req)
		assert.Equal(t, "https://app.example/settings/google/error?error=exchange_failed", w.Header().Get("Location"))
	})

	t.Run("save token", func(t *testing.T) {
		env := newTestEnv(t, true)
		w := env.do(http.MethodPost, "/google/token", "tech-token", `{"refresh_token":"rt-1"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "rt-1", env.users.tokens[technician.ID])
		assert.Equal(t, []string{technician.ID}, env.auth.refreshed, "cached user is dropped so google_connected flips at once")
	})

	t.Run("missing token leaves cache alone", func(t *testing.T) {
		env := newTestEnv(t, true)
		w := env.do(http.MethodPost, "/google/token", "tech-token", `{}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, env.auth.refreshed)
	})
}

func TestVendorRoutes(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(http.MethodGet, "/vendors", "tech-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["vendors"], 1)

	w = env.do(http.MethodPost, "/vendors", "tech-token", `{"name":"Bolt Co"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodPost, "/vendors", "manager-token", `{"name":"Bolt Co","email":"sales@bolt.example"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, env.vendors.created, 1)
	v := env.vendors.created[0]
	assert.Equal(t, orgID, v.OrganizationID)
	assert.True(t, v.IsActive)
	assert.False(t, v.Phone.Valid)
}

func TestNotificationRoutes(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(http.MethodGet, "/notifications?limit=10", "manager-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["notifications"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, jobID, items[0].(map[string]any)["related_entity_id"])

	w = env.do(http.MethodGet, "/notifications?limit=1000", "manager-token", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/notifications/unread-count", "manager-token", "")
	assert.EqualValues(t, 3, decode(t, w)["count"])

	w = env.do(http.MethodPost, "/notifications/55555555-5555-5555-5555-555555555555/read", "manager-token", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/notifications/66666666-6666-6666-6666-666666666666/read", "manager-token", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPost, "/notifications/read-all", "manager-token", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.inbox.readAll)
}
