package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chungyifen/tax-refund/internal/errs"
	"github.com/chungyifen/tax-refund/internal/model"
)

var signKey = []byte("test-sign-key-0123456789")

type fakeAuth struct {
	tokens   model.Tokens
	loginErr error

	profiles map[uuid.UUID]model.Profile
	users    []model.UserSummary
}

func (f *fakeAuth) LoginWithIP(_ context.Context, username, password, _ string) (model.Tokens, error) {
	if f.loginErr != nil {
		return model.Tokens{}, f.loginErr
	}
	return f.tokens, nil
}

func (f *fakeAuth) Profile(_ context.Context, id uuid.UUID) (model.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return model.Profile{}, errs.ErrUnauthorized
	}
	return p, nil
}

func (f *fakeAuth) ListUsers(context.Context) ([]model.UserSummary, error) {
	return f.users, nil
}

type fakeRefundSvc struct {
	rows      []model.TaxRefund
	createErr error
}

func (f *fakeRefundSvc) List(context.Context) ([]model.TaxRefund, error) { return f.rows, nil }
func (f *fakeRefundSvc) Create(_ context.Context, in model.NewTaxRefund) (model.TaxRefund, error) {
	if f.createErr != nil {
		return model.TaxRefund{}, f.createErr
	}
	return model.TaxRefund{RefundNo: in.RefundNo, Status: "DRAFT"}, nil
}

func signToken(t *testing.T, id uuid.UUID) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   id.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signKey)
	require.NoError(t, err)
	return s
}

func newTestServer(auth *fakeAuth, refunds *fakeRefundSvc) *httptest.Server {
	s := New(auth, refunds, signKey, zap.NewNop())
	return httptest.NewServer(s.Router())
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestLogin_ReturnsTokenBody(t *testing.T) {
	auth := &fakeAuth{tokens: model.Tokens{AccessToken: "signed", TokenType: "Bearer"}}
	srv := newTestServer(auth, &fakeRefundSvc{})
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{"username": "admin", "password": "pw"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out loginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "signed", out.AccessToken)
	require.Equal(t, "Bearer", out.TokenType)
}

func TestLogin_BadCredentialsAndRateLimit(t *testing.T) {
	srv := newTestServer(&fakeAuth{loginErr: errs.ErrUnauthorized}, &fakeRefundSvc{})
	defer srv.Close()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{"username": "x", "password": "y"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var e apiError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	require.Equal(t, "bad credentials", e.Message)

	srv2 := newTestServer(&fakeAuth{loginErr: errs.ErrRateLimited}, &fakeRefundSvc{})
	defer srv2.Close()
	resp2 := doJSON(t, http.MethodPost, srv2.URL+"/api/auth/login", "", map[string]string{"username": "x", "password": "y"})
	defer resp2.Body.Close()
	require.Equal(t, http.StatusTooManyRequests, resp2.StatusCode)
}

func TestLogin_MissingFields(t *testing.T) {
	srv := newTestServer(&fakeAuth{}, &fakeRefundSvc{})
	defer srv.Close()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{"username": "only"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInfo_ReturnsBareProfileBody(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	auth := &fakeAuth{profiles: map[uuid.UUID]model.Profile{
		id: {Name: "admin", Avatar: "/static/a.png", Roles: []string{"ROLE_ADMIN", "USER_VIEW"}},
	}}
	srv := newTestServer(auth, &fakeRefundSvc{})
	defer srv.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/auth/info", signToken(t, id), nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p model.Profile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	require.Equal(t, "admin", p.Name)
	require.Equal(t, []string{"ROLE_ADMIN", "USER_VIEW"}, p.Roles)
}

func TestInfo_RejectsMissingAndBadTokens(t *testing.T) {
	srv := newTestServer(&fakeAuth{}, &fakeRefundSvc{})
	defer srv.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/auth/info", "", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp2 := doJSON(t, http.MethodGet, srv.URL+"/api/auth/info", "garbage.token.value", nil)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestLogout_RequiresAuthAndAcks(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	auth := &fakeAuth{profiles: map[uuid.UUID]model.Profile{id: {Name: "x", Roles: []string{"ROLE_OP"}}}}
	srv := newTestServer(auth, &fakeRefundSvc{})
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/logout", signToken(t, id), nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp2 := doJSON(t, http.MethodPost, srv.URL+"/api/auth/logout", "", nil)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestListUsers_EnforcesAuthority(t *testing.T) {
	admin := uuid.Must(uuid.NewV4())
	op := uuid.Must(uuid.NewV4())
	auth := &fakeAuth{
		profiles: map[uuid.UUID]model.Profile{
			admin: {Name: "admin", Roles: []string{"USER_VIEW"}},
			op:    {Name: "op", Roles: []string{"TAX_REFUND_VIEW"}},
		},
		users: []model.UserSummary{{Username: "admin"}},
	}
	srv := newTestServer(auth, &fakeRefundSvc{})
	defer srv.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/system/users", signToken(t, admin), nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp2 := doJSON(t, http.MethodGet, srv.URL+"/api/system/users", signToken(t, op), nil)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusForbidden, resp2.StatusCode)
}

func TestRefundEndpoints(t *testing.T) {
	op := uuid.Must(uuid.NewV4())
	auth := &fakeAuth{profiles: map[uuid.UUID]model.Profile{
		op: {Name: "op", Roles: []string{"TAX_REFUND_VIEW", "TAX_REFUND_EDIT"}},
	}}
	refunds := &fakeRefundSvc{rows: []model.TaxRefund{{RefundNo: "R-1"}}}
	srv := newTestServer(auth, refunds)
	defer srv.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/refund/list", signToken(t, op), nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []model.TaxRefund
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 1)

	resp2 := doJSON(t, http.MethodPost, srv.URL+"/api/refund/list", signToken(t, op), model.NewTaxRefund{RefundNo: "R-2", ProductNo: "P", Quantity: 1})
	defer resp2.Body.Close()
	require.Equal(t, http.StatusCreated, resp2.StatusCode)
}

func TestRefundCreate_ValidationMapsTo400(t *testing.T) {
	op := uuid.Must(uuid.NewV4())
	auth := &fakeAuth{profiles: map[uuid.UUID]model.Profile{
		op: {Name: "op", Roles: []string{"TAX_REFUND_EDIT"}},
	}}
	srv := newTestServer(auth, &fakeRefundSvc{createErr: errs.ErrValidation})
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/refund/list", signToken(t, op), model.NewTaxRefund{})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
