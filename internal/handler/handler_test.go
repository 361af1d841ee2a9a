package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/unigate-dev/unigate/internal/config"
	"github.com/unigate-dev/unigate/internal/domain"
	"github.com/unigate-dev/unigate/internal/middleware"
)

type mockGate struct {
	RegisterFunc           func(data domain.RegistrationData) (domain.User, error)
	WaitlistFunc           func(actor domain.User, filter domain.WaitlistFilter) ([]domain.User, error)
	ApproveFunc            func(actor domain.User, id domain.UserId) (domain.User, error)
	DenyFunc               func(actor domain.User, id domain.UserId, reason *string) (domain.User, error)
	RemoveFunc             func(actor domain.User, id domain.UserId) error
	LoginFunc              func(creds domain.Credentials) (string, domain.User, error)
	ProvisionAdminFunc     func(actor domain.User, data domain.RegistrationData) (domain.User, error)
	ProfileFunc            func(id domain.UserId) (domain.User, error)
	RefreshRevocationsFunc func() error
}

func (m *mockGate) Register(data domain.RegistrationData) (domain.User, error) {
	return m.RegisterFunc(data)
}
func (m *mockGate) Waitlist(actor domain.User, filter domain.WaitlistFilter) ([]domain.User, error) {
	return m.WaitlistFunc(actor, filter)
}
func (m *mockGate) Approve(actor domain.User, id domain.UserId) (domain.User, error) {
	return m.ApproveFunc(actor, id)
}
func (m *mockGate) Deny(actor domain.User, id domain.UserId, reason *string) (domain.User, error) {
	return m.DenyFunc(actor, id, reason)
}
func (m *mockGate) Remove(actor domain.User, id domain.UserId) error {
	return m.RemoveFunc(actor, id)
}
func (m *mockGate) Login(creds domain.Credentials) (string, domain.User, error) {
	return m.LoginFunc(creds)
}
func (m *mockGate) ProvisionAdmin(actor domain.User, data domain.RegistrationData) (domain.User, error) {
	return m.ProvisionAdminFunc(actor, data)
}
func (m *mockGate) Profile(id domain.UserId) (domain.User, error) {
	return m.ProfileFunc(id)
}
func (m *mockGate) RefreshRevocations() error {
	if m.RefreshRevocationsFunc != nil {
		return m.RefreshRevocationsFunc()
	}
	return nil
}

type mockDepartments struct {
	CreateFunc func(actor domain.User, name, code string) (domain.Department, error)
	ListFunc   func() ([]domain.Department, error)
	DeleteFunc func(actor domain.User, id domain.DepartmentId) error
}

func (m *mockDepartments) Create(actor domain.User, name, code string) (domain.Department, error) {
	return m.CreateFunc(actor, name, code)
}
func (m *mockDepartments) List() ([]domain.Department, error) {
	return m.ListFunc()
}
func (m *mockDepartments) Delete(actor domain.User, id domain.DepartmentId) error {
	return m.DeleteFunc(actor, id)
}

type mockAudit struct {
	EventsFunc func(actor domain.User, filter domain.AuditFilter) ([]domain.AuditEvent, error)
}

func (m *mockAudit) Events(actor domain.User, filter domain.AuditFilter) ([]domain.AuditEvent, error) {
	return m.EventsFunc(actor, filter)
}

func testHandlerConfig() *config.Config {
	return &config.Config{
		Public: config.Public{
			JwtTTL:           15 * time.Minute,
			MinPasswordLen:   8,
			WaitlistPageSize: 50,
		},
	}
}

func newTestHandler(gate *mockGate, departments *mockDepartments, audit *mockAudit) *Handler {
	if gate == nil {
		gate = &mockGate{}
	}
	if departments == nil {
		departments = &mockDepartments{}
	}
	if audit == nil {
		audit = &mockAudit{}
	}
	return New(gate, departments, audit, testHandlerConfig())
}

// createRequest builds a request with a JSON body and, when user is not
// nil, an authenticated context as the auth middleware would leave it.
func createRequest(t *testing.T, method, target string, body any, user *domain.User) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	if user != nil {
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserClaimsKey, user))
	}
	return req
}

// serve routes the request through a throwaway chi router so URL params
// resolve the same way they do in production.
func serve(pattern string, handlerFunc http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.MethodFunc(req.Method, pattern, handlerFunc)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}
