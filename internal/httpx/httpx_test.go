package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/auth"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.NotFound("order"), http.StatusNotFound},
		{fmt.Errorf("wrap: %w", apperr.BadRequest("insufficient stock")), http.StatusBadRequest},
		{apperr.Conflict("dup"), http.StatusConflict},
		{apperr.Unauthorized("no"), http.StatusUnauthorized},
		{apperr.Forbidden("no"), http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Error())
	}
}

func TestFail_HidesInternalErrors(t *testing.T) {
	r := gin.New()
	r.GET("/bad", func(c *gin.Context) { Fail(c, apperr.BadRequest("order already paid")) })
	r.GET("/boom", func(c *gin.Context) { Fail(c, errors.New("pq: connection reset")) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/bad", nil))
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "order already paid", env.Message)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", env.Message)
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2}, PageQuery{Page: 1, Limit: 2}, 5)
	assert.Equal(t, Pagination{Page: 1, Limit: 2, Total: 5, TotalPages: 3}, p.Pagination)

	empty := NewPage[int](nil, PageQuery{Page: 1, Limit: 20}, 0)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.Pagination.TotalPages)

	b, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[],"pagination":{"page":1,"limit":20,"total":0,"totalPages":0}}`, string(b))
}

func TestParsePage(t *testing.T) {
	cases := map[string]PageQuery{
		"":                    {Page: 1, Limit: DefaultLimit},
		"?page=3&limit=10":    {Page: 3, Limit: 10},
		"?page=-1&limit=0":    {Page: 1, Limit: DefaultLimit},
		"?page=x&limit=10000": {Page: 1, Limit: MaxLimit},
	}
	for qs, want := range cases {
		var got PageQuery
		r := gin.New()
		r.GET("/", func(c *gin.Context) { got = ParsePage(c) })
		serve(r, httptest.NewRequest(http.MethodGet, "/"+qs, nil))
		assert.Equal(t, want, got, qs)
	}
	assert.Equal(t, 20, PageQuery{Page: 3, Limit: 10}.Offset())
}

func TestParseTimeRange(t *testing.T) {
	run := func(qs string) (TimeRange, error) {
		var tr TimeRange
		var err error
		r := gin.New()
		r.GET("/", func(c *gin.Context) { tr, err = ParseTimeRange(c) })
		serve(r, httptest.NewRequest(http.MethodGet, "/"+qs, nil))
		return tr, err
	}

	tr, err := run("")
	require.NoError(t, err)
	assert.Nil(t, tr.From)
	assert.Nil(t, tr.To)

	tr, err = run("?from=2024-01-01&to=2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *tr.From)
	// a bare "to" date covers that whole day
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *tr.To)

	tr, err = run("?from=2024-01-01T08:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 8, tr.From.Hour())

	_, err = run("?from=yesterday")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = run("?from=2024-02-01&to=2024-01-01")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

type fakeVerifier map[string]auth.Principal

func (f fakeVerifier) Verify(raw string) (auth.Principal, error) {
	p, ok := f[raw]
	if !ok {
		return auth.Principal{}, auth.ErrInvalidToken
	}
	return p, nil
}

func TestAuthenticateAndRequire(t *testing.T) {
	v := fakeVerifier{
		"cashier": {EmployeeID: "e1", Role: "cashier", Permissions: []string{auth.PermOrders}},
		"owner":   {EmployeeID: "e2", Role: auth.RoleOwner},
	}
	newRouter := func(enabled bool) *gin.Engine {
		r := gin.New()
		r.Use(Authenticate(v, enabled))
		r.POST("/orders", Require(auth.PermOrders), func(c *gin.Context) { Message(c, ActorID(c)) })
		r.POST("/products", Require(auth.PermCatalog), func(c *gin.Context) { Message(c, ActorID(c)) })
		return r
	}
	call := func(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return serve(r, req)
	}

	on := newRouter(true)
	assert.Equal(t, http.StatusUnauthorized, call(on, "/orders", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(on, "/orders", "forged").Code)
	assert.Equal(t, http.StatusOK, call(on, "/orders", "cashier").Code)
	assert.Equal(t, http.StatusForbidden, call(on, "/products", "cashier").Code)
	assert.Equal(t, http.StatusOK, call(on, "/products", "owner").Code)

	w := call(on, "/orders", "cashier")
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "e1", env.Message)

	off := newRouter(false)
	assert.Equal(t, http.StatusOK, call(off, "/products", "").Code)
}

func TestRequestIDAndRecovery(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(RequestID(), Logger(log), Recovery(log))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })
	r.GET("/ok", func(c *gin.Context) { Message(c, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	w := serve(r, req)
	assert.Equal(t, "rid-1", w.Header().Get("X-Request-ID"))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var sawPanic bool
	for _, e := range hook.AllEntries() {
		if e.Message == "[http] panic recovered" {
			sawPanic = true
		}
	}
	assert.True(t, sawPanic)
}

func TestCanonicalIDs(t *testing.T) {
	var gotParam, gotQuery string
	r := gin.New()
	r.Use(CanonicalIDs())
	r.GET("/orders/:id", func(c *gin.Context) {
		gotParam, gotQuery = c.Param("id"), c.Query("shop_id")
		Message(c, "ok")
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, gotParam)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/orders/"+uuid.Nil.String()+"?shop_id=x1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := "3F2504E0-4F89-11D3-9A0C-0305E82C3301"
	w = serve(r, httptest.NewRequest(http.MethodGet, "/orders/"+id+"?shop_id="+id+"&status=paid", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, strings.ToLower(id), gotParam)
	assert.Equal(t, strings.ToLower(id), gotQuery)
}
