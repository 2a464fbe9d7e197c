package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/dto"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/service"
	pkgerrors "github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/errors"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/jwt"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult *dto.UserResponse
	registerErr    error
	loginResult    *dto.TokenResponse
	loginErr       error
	refreshResult  *dto.TokenResponse
	refreshErr     error
	logoutErr      error
	meResult       *dto.UserResponse
	meErr          error
	changePassErr  error
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.UserResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Refresh(_ context.Context, _ *dto.RefreshRequest) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims) error {
	return m.logoutErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock AssignmentService ──

type mockAssignmentService struct {
	createResult    *dto.ScheduleResponse
	createErr       error
	getResult       *dto.ScheduleResponse
	getErr          error
	listResult      []dto.ScheduleResponse
	listTotal       int64
	listErr         error
	availableResult []dto.AvailableScheduleResponse
	availableErr    error
	myResult        []dto.ScheduleResponse
	myErr           error
	claimResult     *dto.ScheduleResponse
	claimErr        error
	assignResult    *dto.ScheduleResponse
	assignErr       error
	unassignErr     error
	bulkResult      *dto.BulkAssignResponse
	bulkErr         error
	deleteErr       error
}

func (m *mockAssignmentService) CreateSchedule(_ context.Context, _ *dto.CreateScheduleRequest, _ string) (*dto.ScheduleResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockAssignmentService) GetSchedule(_ context.Context, _ string) (*dto.ScheduleResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockAssignmentService) ListSchedules(_ context.Context, _ *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockAssignmentService) ListAvailable(_ context.Context, _ string) ([]dto.AvailableScheduleResponse, error) {
	return m.availableResult, m.availableErr
}
func (m *mockAssignmentService) MySchedule(_ context.Context, _ string) ([]dto.ScheduleResponse, error) {
	return m.myResult, m.myErr
}
func (m *mockAssignmentService) Claim(_ context.Context, _, _ string) (*dto.ScheduleResponse, error) {
	return m.claimResult, m.claimErr
}
func (m *mockAssignmentService) Assign(_ context.Context, _ string, _ *dto.AssignScheduleRequest, _ string) (*dto.ScheduleResponse, error) {
	return m.assignResult, m.assignErr
}
func (m *mockAssignmentService) Unassign(_ context.Context, _, _ string) error {
	return m.unassignErr
}
func (m *mockAssignmentService) BulkAssign(_ context.Context, _ *dto.BulkAssignRequest, _ string) (*dto.BulkAssignResponse, error) {
	return m.bulkResult, m.bulkErr
}
func (m *mockAssignmentService) DeleteSchedule(_ context.Context, _, _ string) error {
	return m.deleteErr
}

// ── Mock AppealService ──

type mockAppealService struct {
	createResult *dto.AppealResponse
	createErr    error
	myResult     []dto.AppealResponse
	myErr        error
	listResult   []dto.AppealResponse
	listTotal    int64
	listErr      error
	getResult    *dto.AppealResponse
	getErr       error
	decideResult *dto.AppealResponse
	decideErr    error
	markReadErr  error
}

func (m *mockAppealService) Create(_ context.Context, _ *dto.CreateAppealRequest, _ string) (*dto.AppealResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockAppealService) MyAppeals(_ context.Context, _ string) ([]dto.AppealResponse, error) {
	return m.myResult, m.myErr
}
func (m *mockAppealService) List(_ context.Context, _ *dto.AppealListRequest) ([]dto.AppealResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockAppealService) Get(_ context.Context, _ string) (*dto.AppealResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockAppealService) Decide(_ context.Context, _ string, _ *dto.DecideAppealRequest, _ string) (*dto.AppealResponse, error) {
	return m.decideResult, m.decideErr
}
func (m *mockAppealService) MarkRead(_ context.Context, _, _ string) error {
	return m.markReadErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportSchedulesXLSX(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportMyScheduleICS(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "admin")
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// serve 注册单条路由并执行请求，路由前置注入认证上下文
func serve(method, path string, handlerFunc gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := gin.New()
	r.Handle(method, path, func(c *gin.Context) { setAuth(c) }, handlerFunc)
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "lilei@example.edu.cn",
		Password: "secret123",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve("POST", "/auth/login", h.Login, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	w := serve("POST", "/auth/login", h.Login, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "lilei@example.edu.cn",
		Password: "wrong",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve("POST", "/auth/login", h.Login, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{registerErr: service.ErrEmailTaken})

	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Name: "李雷", Email: "lilei@example.edu.cn", Password: "secret123",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve("POST", "/auth/register", h.Register, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_ChangePassword_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest("PUT", "/auth/password", jsonBody(dto.ChangePasswordRequest{
		OldPassword: "Old12345",
		NewPassword: "New12345",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve("PUT", "/auth/password", h.ChangePassword, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_ChangePassword_WrongOld(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{changePassErr: service.ErrOldPasswordWrong})

	req := httptest.NewRequest("PUT", "/auth/password", jsonBody(dto.ChangePasswordRequest{
		OldPassword: "wrong-old1",
		NewPassword: "New12345",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve("PUT", "/auth/password", h.ChangePassword, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11004 {
		t.Errorf("expected error code 11004, got %d", resp.Code)
	}
}

func TestScheduleHandler_Claim_Success(t *testing.T) {
	mock := &mockAssignmentService{
		claimResult: &dto.ScheduleResponse{ID: "sch-1", DepartmentQuota: 1},
	}
	h := NewScheduleHandler(mock)

	req := httptest.NewRequest("POST", "/schedules/sch-1/claim", nil)
	w := serve("POST", "/schedules/:id/claim", h.Claim, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestScheduleHandler_Claim_SlotTaken(t *testing.T) {
	h := NewScheduleHandler(&mockAssignmentService{claimErr: pkgerrors.ErrSlotTaken})

	req := httptest.NewRequest("POST", "/schedules/sch-1/claim", nil)
	w := serve("POST", "/schedules/:id/claim", h.Claim, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 16002 {
		t.Errorf("expected error code 16002, got %d", resp.Code)
	}
}

func TestScheduleHandler_Claim_NotEligible(t *testing.T) {
	h := NewScheduleHandler(&mockAssignmentService{claimErr: service.ErrNotEligible})

	req := httptest.NewRequest("POST", "/schedules/sch-1/claim", nil)
	w := serve("POST", "/schedules/:id/claim", h.Claim, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestScheduleHandler_Claim_QuotaExceeded(t *testing.T) {
	h := NewScheduleHandler(&mockAssignmentService{claimErr: service.ErrQuotaExceeded})

	req := httptest.NewRequest("POST", "/schedules/sch-1/claim", nil)
	w := serve("POST", "/schedules/:id/claim", h.Claim, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 16004 {
		t.Errorf("expected error code 16004, got %d", resp.Code)
	}
}

func TestScheduleHandler_Assign_NotFound(t *testing.T) {
	h := NewScheduleHandler(&mockAssignmentService{assignErr: service.ErrScheduleNotFound})

	req := httptest.NewRequest("PUT", "/schedules/sch-x/assign", jsonBody(dto.AssignScheduleRequest{
		InvigilatorID: "inv-1",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve("PUT", "/schedules/:id/assign", h.Assign, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AppealHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAppealHandler_Decide_AlreadyDecided(t *testing.T) {
	h := NewAppealHandler(&mockAppealService{decideErr: pkgerrors.ErrAppealDecided})

	req := httptest.NewRequest("PUT", "/appeals/ap-1/decide", jsonBody(dto.DecideAppealRequest{
		Status: "APPROVED",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve("PUT", "/appeals/:id/decide", h.Decide, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 17005 {
		t.Errorf("expected error code 17005, got %d", resp.Code)
	}
}

func TestAppealHandler_Create_NotSlotOwner(t *testing.T) {
	h := NewAppealHandler(&mockAppealService{createErr: service.ErrNotSlotOwner})

	req := httptest.NewRequest("POST", "/appeals", jsonBody(dto.CreateAppealRequest{
		ScheduleID: "a3bb189e-8bf9-3888-9912-ace4e6543002",
		Type:       "FIND_REPLACEMENT",
		Reason:     "当天另有安排",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve("POST", "/appeals", h.Create, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_SchedulesXLSX_Headers(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("fake-xlsx-bytes"),
		filename: "监考台账_20260901.xlsx",
	})

	req := httptest.NewRequest("GET", "/export/schedules", nil)
	w := serve("GET", "/export/schedules", h.SchedulesXLSX, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_MyScheduleICS_NoSchedules(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoSchedules})

	req := httptest.NewRequest("GET", "/export/my-schedule.ics", nil)
	w := serve("GET", "/export/my-schedule.ics", h.MyScheduleICS, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
