package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type fakeAttendanceService struct {
	punchInResult attendance.Response
	punchInErr    error
	lastPunchIn   attendance.PunchInRequest
	listResult    attendance.ListResponse
}

func (f *fakeAttendanceService) PunchIn(ctx context.Context, req attendance.PunchInRequest) (attendance.Response, error) {
	f.lastPunchIn = req
	if f.punchInErr != nil {
		return attendance.Response{}, f.punchInErr
	}
	return f.punchInResult, nil
}

func (f *fakeAttendanceService) PunchOut(ctx context.Context, req attendance.PunchOutRequest) (attendance.Response, error) {
	return attendance.Response{}, attendance.ErrNoOpenPunch
}

func (f *fakeAttendanceService) SetStatus(ctx context.Context, req attendance.SetStatusRequest) (attendance.Response, error) {
	return attendance.Response{ID: req.RecordID, Status: req.Status}, nil
}

func (f *fakeAttendanceService) ManualEntry(ctx context.Context, req attendance.ManualEntryRequest) (attendance.Response, error) {
	return attendance.Response{}, nil
}

func (f *fakeAttendanceService) Get(ctx context.Context, id string, companyID string) (attendance.Response, error) {
	return attendance.Response{}, attendance.ErrRecordNotFound
}

func (f *fakeAttendanceService) List(ctx context.Context, filter attendance.Filter, companyID string) (attendance.ListResponse, error) {
	return f.listResult, nil
}

// stubHandler satisfies the remaining handler interfaces for routes the
// attendance tests never hit.
type stubHandler struct{}

func (stubHandler) Submit(w http.ResponseWriter, r *http.Request)        {}
func (stubHandler) Review(w http.ResponseWriter, r *http.Request)        {}
func (stubHandler) ListPending(w http.ResponseWriter, r *http.Request)   {}
func (stubHandler) Generate(w http.ResponseWriter, r *http.Request)      {}
func (stubHandler) Get(w http.ResponseWriter, r *http.Request)           {}
func (stubHandler) List(w http.ResponseWriter, r *http.Request)          {}
func (stubHandler) Approve(w http.ResponseWriter, r *http.Request)       {}
func (stubHandler) Reject(w http.ResponseWriter, r *http.Request)        {}
func (stubHandler) MarkPaid(w http.ResponseWriter, r *http.Request)      {}
func (stubHandler) Recalculate(w http.ResponseWriter, r *http.Request)   {}
func (stubHandler) AddManualLine(w http.ResponseWriter, r *http.Request) {}
func (stubHandler) Run(w http.ResponseWriter, r *http.Request)           {}

func newTestRouter(t *testing.T, svc attendance.AttendanceService) (jwt.Service, http.Handler) {
	t.Helper()

	jwtSvc := jwt.NewJWTService(handlerTestSecret, "1h")
	router := NewRouter(
		jwtSvc,
		"test",
		NewAttendanceHandler(svc),
		stubHandler{},
		stubHandler{},
		stubHandler{},
	)
	return jwtSvc, router
}

func bearerToken(t *testing.T, jwtSvc jwt.Service, employeeID, companyID, role string) string {
	t.Helper()
	token, _, err := jwtSvc.GenerateAccessToken("user-1", &employeeID, companyID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAttendanceHandler_PunchIn(t *testing.T) {
	svc := &fakeAttendanceService{
		punchInResult: attendance.Response{ID: "att-1", Status: "PENDING"},
	}
	jwtSvc, router := newTestRouter(t, svc)

	body, _ := json.Marshal(map[string]interface{}{
		"latitude":  -6.2,
		"longitude": 106.8,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/punch-in", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, jwtSvc, "emp-1", "company-1", "employee"))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "company-1", svc.lastPunchIn.CompanyID)
	assert.Equal(t, "emp-1", svc.lastPunchIn.EmployeeID)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "att-1", resp.Data.ID)
}

func TestAttendanceHandler_PunchIn_GeofenceRejected(t *testing.T) {
	svc := &fakeAttendanceService{punchInErr: attendance.ErrOutsideGeofence}
	jwtSvc, router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/punch-in", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Authorization", bearerToken(t, jwtSvc, "emp-1", "company-1", "employee"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAttendanceHandler_MissingToken(t *testing.T) {
	svc := &fakeAttendanceService{}
	_, router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/punch-in", bytes.NewReader([]byte(`{}`)))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAttendanceHandler_ListRequiresManager(t *testing.T) {
	svc := &fakeAttendanceService{}
	jwtSvc, router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/records", nil)
	req.Header.Set("Authorization", bearerToken(t, jwtSvc, "emp-1", "company-1", "employee"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAttendanceHandler_ListAsManager(t *testing.T) {
	svc := &fakeAttendanceService{
		listResult: attendance.ListResponse{TotalCount: 1, Page: 1, Limit: 20, Records: []attendance.Response{{ID: "att-1"}}},
	}
	jwtSvc, router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/records?status=PENDING", nil)
	req.Header.Set("Authorization", bearerToken(t, jwtSvc, "emp-2", "company-1", "manager"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Meta struct {
			TotalItems int64 `json:"total_items"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Meta.TotalItems)
}

func TestAttendanceHandler_SetStatus_Validation(t *testing.T) {
	svc := &fakeAttendanceService{}
	jwtSvc, router := newTestRouter(t, svc)

	body := []byte(`{"status":"BOGUS"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/attendance/records/att-1/status", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, jwtSvc, "emp-2", "company-1", "admin"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
