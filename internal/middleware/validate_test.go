package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/v8n/internal/errs"
	"github.com/deppfellow/v8n/internal/validation"
)

type errorBody struct {
	Code    string                  `json:"code"`
	Status  int                     `json:"status"`
	Errors  []errs.FieldError       `json:"errors"`
	Details validation.ErrorPayload `json:"details"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func newEcho(t *testing.T) (*echo.Echo, *Middlewares) {
	t.Helper()
	s := newTestServer(t)
	mw := NewMiddlewares(s)

	e := echo.New()
	e.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	create := findRoute(t, s, http.MethodPost, "/teams/a/users")
	list := findRoute(t, s, http.MethodGet, "/teams/a/users")
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.POST(create.Path, ok, mw.Validation.Route(create))
	e.GET(list.Path, ok, mw.Validation.Route(list))
	return e, mw
}

func serve(e http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestValidate_ContinuesOnValidRequest(t *testing.T) {
	v := validation.MustNew(validation.EngineFunc(func(context.Context, any, any, validation.Options) ([]validation.Violation, error) {
		return nil, nil
	}), validation.Schema{validation.RegionQuery: "q"})

	called := false
	h := Validate(v)(func(c echo.Context) error {
		called = true
		_, ok := c.Get(RequestDataKey).(*EchoRequest)
		assert.True(t, ok)
		return nil
	})

	c := newEchoContext(httptest.NewRequest(http.MethodGet, "/?a=1", nil), nil, nil)
	require.NoError(t, h(c))
	assert.True(t, called)
}

func TestValidate_ReturnsAggregateError(t *testing.T) {
	v := validation.MustNew(validation.EngineFunc(func(_ context.Context, _ any, _ any, opts validation.Options) ([]validation.Violation, error) {
		return []validation.Violation{{Message: string(opts.Region) + " bad"}}, nil
	}), validation.Schema{validation.RegionHeaders: "h", validation.RegionQuery: "q"})

	h := Validate(v)(func(c echo.Context) error {
		t.Fatal("next must not run")
		return nil
	})

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	err := h(c)

	vErr, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "v8nError", vErr.Name)
	require.Len(t, vErr.Errors, 2)
	assert.Equal(t, "query bad", vErr.Errors[0].Message)
	assert.Equal(t, "headers bad", vErr.Errors[1].Message)
	assert.False(t, c.Response().Committed)
}

func TestValidate_EngineFailurePropagates(t *testing.T) {
	boom := errors.New("boom")
	v := validation.MustNew(validation.EngineFunc(func(context.Context, any, any, validation.Options) ([]validation.Violation, error) {
		return nil, boom
	}), validation.Schema{validation.RegionQuery: "q"})

	err := Validate(v)(func(echo.Context) error { return nil })(
		newEchoContext(httptest.NewRequest(http.MethodGet, "/", nil), nil, nil))
	assert.ErrorIs(t, err, boom)
	assert.False(t, validation.IsValidationError(err))
}

func TestValidationMiddleware_Pipeline(t *testing.T) {
	e, _ := newEcho(t)

	rec := serve(e, http.MethodPost, "/teams/red/users", `{"name":"ada","age":36}`, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(e, http.MethodPost, "/teams/Red/users", `{"name":123}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, errs.CodeValidationFailed, body.Code)
	assert.Equal(t, validation.ErrorName, body.Details.Name)
	assert.Equal(t, validation.ErrorMessage, body.Details.Message)
	require.Len(t, body.Details.Errors, 2)
	assert.Equal(t, []string{"name"}, body.Details.Errors[0].Path)
	assert.Equal(t, "body", body.Details.Errors[0].Context["region"])
	assert.Equal(t, []string{"team"}, body.Details.Errors[1].Path)
	assert.Equal(t, "params", body.Details.Errors[1].Context["region"])
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "name", body.Errors[0].Field)
}

func TestValidationMiddleware_UnknownAndCoercion(t *testing.T) {
	e, _ := newEcho(t)

	rec := serve(e, http.MethodPost, "/teams/red/users", `{"name":"ada","admin":true}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	require.Len(t, body.Details.Errors, 1)
	assert.Equal(t, []string{"admin"}, body.Details.Errors[0].Path)

	rec = serve(e, http.MethodGet, "/teams/red/users?limit=10&extra=1", "", map[string]string{"X-Tenant": "acme"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(e, http.MethodGet, "/teams/red/users?limit=99", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body = decodeError(t, rec)
	require.Len(t, body.Details.Errors, 2)
	assert.Equal(t, "query", body.Details.Errors[0].Context["region"])
	assert.Equal(t, "headers", body.Details.Errors[1].Context["region"])
}

func TestValidationMiddleware_MalformedBody(t *testing.T) {
	e, _ := newEcho(t)

	rec := serve(e, http.MethodPost, "/teams/red/users", `{"name":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, rec).Code)
}

func TestValidationMiddleware_Metrics(t *testing.T) {
	s := newTestServer(t)
	mw := NewMiddlewares(s)
	e := echo.New()
	e.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	route := findRoute(t, s, http.MethodPost, "/teams/a/users")
	e.POST(route.Path, func(c echo.Context) error { return errors.New("handler failed") }, mw.Validation.Route(route))

	serve(e, http.MethodPost, "/teams/red/users", `{"name":"ada"}`, nil)
	serve(e, http.MethodPost, "/teams/red/users", `{}`, nil)

	count, err := testutil.GatherAndCount(s.Metrics.Registry(), "v8n_validations_total")
	require.NoError(t, err)
	// A valid and an invalid series; the handler failure is not a validation error.
	assert.Equal(t, 2, count)
}

func TestValidateHTTP_Chi(t *testing.T) {
	s := newTestServer(t)
	route := findRoute(t, s, http.MethodPost, "/teams/a/users")

	r := chi.NewRouter()
	r.With(ValidateHTTP(route.Validator(), nil)).
		Post("/teams/{team}/users", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})

	rec := serve(r, http.MethodPost, "/teams/red/users", `{"name":"ada"}`, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(r, http.MethodPost, "/teams/RED/users", `{}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, errs.CodeValidationFailed, body.Code)
	require.Len(t, body.Details.Errors, 2)
	assert.Equal(t, "required", body.Details.Errors[0].Type)
	assert.Equal(t, "params", body.Details.Errors[1].Context["region"])
}

func TestValidateHTTP_CustomErrorHandler(t *testing.T) {
	s := newTestServer(t)
	route := findRoute(t, s, http.MethodPost, "/teams/a/users")

	var got error
	h := ValidateHTTP(route.Validator(), func(w http.ResponseWriter, _ *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next must not run")
	}))

	rec := serve(h, http.MethodPost, "/teams/red/users", `{}`, nil)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.True(t, validation.IsValidationError(got))
}
