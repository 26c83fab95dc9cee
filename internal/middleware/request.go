package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/v8n/internal/errs"
	"github.com/deppfellow/v8n/internal/validation"
)

// RequestDataKey is the Echo context key holding the *EchoRequest built by
// the validation middleware, so handlers can reuse the decoded regions.
const RequestDataKey = "v8n_request"

const maxFormMemory = 32 << 20

// EchoRequest exposes the regions of an Echo request to a validator.
//
//   - body: decoded JSON, or form values for form posts; {} when empty
//   - query: single values as strings, repeated keys as string slices
//   - params: path parameters
//   - headers: lower-cased names, repeated values joined with ", "
//
// The body is read at most once and put back for the handler.
type EchoRequest struct {
	c    echo.Context
	body lazyBody
}

// NewEchoRequest wraps c.
func NewEchoRequest(c echo.Context) *EchoRequest {
	return &EchoRequest{c: c}
}

// RegionData implements validation.Request.
func (r *EchoRequest) RegionData(region validation.Region) (any, error) {
	switch region {
	case validation.RegionBody:
		return r.body.get(r.c.Request())
	case validation.RegionQuery:
		return valuesMap(r.c.QueryParams()), nil
	case validation.RegionParams:
		names, values := r.c.ParamNames(), r.c.ParamValues()
		params := make(map[string]any, len(names))
		for i, name := range names {
			if i < len(values) {
				params[name] = values[i]
			}
		}
		return params, nil
	case validation.RegionHeaders:
		return headerMap(r.c.Request()), nil
	}
	return nil, nil
}

// GetRequestData returns the request adapter stored by the validation
// middleware, or a fresh one.
func GetRequestData(c echo.Context) *EchoRequest {
	if req, ok := c.Get(RequestDataKey).(*EchoRequest); ok {
		return req
	}
	return NewEchoRequest(c)
}

// HTTPRequest exposes the regions of a net/http request. Path parameters
// come from chi's route context when the request was routed by chi.
type HTTPRequest struct {
	r    *http.Request
	body lazyBody
}

// NewHTTPRequest wraps r.
func NewHTTPRequest(r *http.Request) *HTTPRequest {
	return &HTTPRequest{r: r}
}

// RegionData implements validation.Request.
func (h *HTTPRequest) RegionData(region validation.Region) (any, error) {
	switch region {
	case validation.RegionBody:
		return h.body.get(h.r)
	case validation.RegionQuery:
		return valuesMap(h.r.URL.Query()), nil
	case validation.RegionParams:
		params := map[string]any{}
		if rctx := chi.RouteContext(h.r.Context()); rctx != nil {
			for i, key := range rctx.URLParams.Keys {
				if key == "*" || i >= len(rctx.URLParams.Values) {
					continue
				}
				params[key] = rctx.URLParams.Values[i]
			}
		}
		return params, nil
	case validation.RegionHeaders:
		return headerMap(h.r), nil
	}
	return nil, nil
}

type lazyBody struct {
	once  sync.Once
	value any
	err   error
}

func (b *lazyBody) get(r *http.Request) (any, error) {
	b.once.Do(func() {
		b.value, b.err = readBody(r)
	})
	return b.value, b.err
}

func readBody(r *http.Request) (any, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get(echo.HeaderContentType))

	switch mediaType {
	case echo.MIMEApplicationForm:
		if err := r.ParseForm(); err != nil {
			return nil, errs.NewBadRequestError("Malformed form body", false, nil, nil, nil)
		}
		return valuesMap(r.PostForm), nil
	case echo.MIMEMultipartForm:
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, errs.NewBadRequestError("Malformed multipart body", false, nil, nil, nil)
		}
		return valuesMap(r.MultipartForm.Value), nil
	}

	if r.Body == nil || r.Body == http.NoBody {
		return map[string]any{}, nil
	}

	raw, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	// Numbers stay json.Number so large integers reach the schema intact.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, errs.NewBadRequestError("Malformed JSON body", false, nil, nil, nil)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errs.NewBadRequestError("Malformed JSON body", false, nil, nil, nil)
	}
	return body, nil
}

func valuesMap(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
			out[key] = ""
		case 1:
			out[key] = vals[0]
		default:
			out[key] = append([]string(nil), vals...)
		}
	}
	return out
}

func headerMap(r *http.Request) map[string]any {
	out := make(map[string]any, len(r.Header)+1)
	for name, vals := range r.Header {
		out[strings.ToLower(name)] = strings.Join(vals, ", ")
	}
	// net/http moves Host out of the header map.
	if r.Host != "" {
		out["host"] = r.Host
	}
	return out
}
