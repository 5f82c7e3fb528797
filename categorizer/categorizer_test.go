package categorizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func predictServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Passport", req.Title)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientCategorize(t *testing.T) {
	srv := predictServer(t, http.StatusOK, `{"category":"ID_DOCUMENTS","confidence":0.82,"modelVersion":"v1"}`)

	res, err := NewClient(srv.URL, time.Second).Categorize(context.Background(), Request{Title: "Passport", Description: "Renewal"})
	require.NoError(t, err)
	assert.Equal(t, Result{Category: "ID_DOCUMENTS", Confidence: 0.82, Method: MethodLocalML, ModelVersion: "v1"}, res)
}

func TestClientNon2xx(t *testing.T) {
	srv := predictServer(t, http.StatusInternalServerError, `{"error":"boom"}`)

	_, err := NewClient(srv.URL, time.Second).Categorize(context.Background(), Request{Title: "Passport"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestWithFallback(t *testing.T) {
	srv := predictServer(t, http.StatusServiceUnavailable, `{"error":"down"}`)
	c := WithFallback(NewClient(srv.URL, time.Second), NewKeywordCategorizer(), nil)

	res, err := c.Categorize(context.Background(), Request{Title: "Passport", Description: "payroll"})
	require.NoError(t, err)
	assert.Equal(t, MethodLocalMLFallback, res.Method)
	assert.Equal(t, "Administration and Finance", res.Category)
}

type stubCategorizer struct {
	res Result
	err error
}

func (s stubCategorizer) Categorize(context.Context, Request) (Result, error) { return s.res, s.err }

func TestWithFallbackPrimarySucceeds(t *testing.T) {
	primary := stubCategorizer{res: Result{Category: "X", Method: MethodLocalML}}
	fallback := stubCategorizer{err: errors.New("must not be called")}

	res, err := WithFallback(primary, fallback, nil).Categorize(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "X", res.Category)
	assert.Equal(t, MethodLocalML, res.Method)
}

func TestWithFallbackBothFail(t *testing.T) {
	c := WithFallback(stubCategorizer{err: errors.New("a")}, stubCategorizer{err: errors.New("b")}, nil)
	_, err := c.Categorize(context.Background(), Request{})
	assert.EqualError(t, err, "b")
}
