// internal/collector/client_test.go
package collector

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	nodeID   = "6f1c2a9e-4b7d-4c1e-9a57-0f3b2d8e1c44"
	readerID = "b3e0c9d2-1f6a-4e8b-8c3d-7a2f5e9b0d11"
)

// ---- recording server ----

type seen struct {
	method      string
	path        string
	rawQuery    string
	contentType string
	body        string
}

type recorder struct {
	mu     sync.Mutex
	reqs   []seen
	status int
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	r.reqs = append(r.reqs, seen{
		method:      req.Method,
		path:        req.URL.Path,
		rawQuery:    req.URL.RawQuery,
		contentType: req.Header.Get("Content-Type"),
		body:        string(body),
	})
	status := r.status
	r.mu.Unlock()
	w.WriteHeader(status)
}

func (r *recorder) calls() []seen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]seen(nil), r.reqs...)
}

func newClient(t *testing.T, status int) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{status: status}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/", NodeUUID: nodeID, ReaderUUID: readerID, Timeout: time.Second})
	require.NoError(t, err)
	return c, rec
}

// ---- tests ----

func TestHeartbeat_WithoutAnnotations(t *testing.T) {
	c, rec := newClient(t, http.StatusOK)

	code, err := c.Heartbeat(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 200, code)

	reqs := rec.calls()
	require.Len(t, reqs, 1)
	r := reqs[0]
	assert.Equal(t, http.MethodPut, r.method)
	assert.Equal(t, "/api/node/qrCodeReaderHeartbeat", r.path)
	assert.Equal(t, "nodeUUID="+nodeID+"&qrReaderUUID="+readerID, r.rawQuery)
	assert.Equal(t, "application/json", r.contentType)
	assert.Equal(t, "{}", r.body)
}

func TestHeartbeat_AttachesAnnotations(t *testing.T) {
	c, rec := newClient(t, http.StatusNoContent)

	code, err := c.Heartbeat(context.Background(), "[12:00:00] heartbeat failed: 500")
	require.NoError(t, err)
	assert.Equal(t, 204, code)

	reqs := rec.calls()
	require.Len(t, reqs, 1)
	q, err := url.ParseQuery(reqs[0].rawQuery)
	require.NoError(t, err)
	assert.Equal(t, "[12:00:00] heartbeat failed: 500", q.Get("errorMessages"))
	assert.Contains(t, reqs[0].rawQuery, "errorMessages=%5B12%3A00%3A00%5D%20heartbeat%20failed%3A%20500")
}

func TestRecordCode_EscapesData(t *testing.T) {
	c, rec := newClient(t, http.StatusCreated)

	code, err := c.RecordCode(context.Background(), "ABC123\r")
	require.NoError(t, err)
	assert.Equal(t, 201, code)

	reqs := rec.calls()
	require.Len(t, reqs, 1)
	r := reqs[0]
	assert.Equal(t, "/api/node/recordQRCode", r.path)
	assert.Equal(t, "nodeUUID="+nodeID+"&qrReaderUUID="+readerID+"&data=ABC123%0D", r.rawQuery)
}

func TestNon2xx_IsError(t *testing.T) {
	c, _ := newClient(t, http.StatusInternalServerError)

	code, err := c.Heartbeat(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, 500, code)
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: base, NodeUUID: nodeID, ReaderUUID: readerID, Timeout: time.Second})
	require.NoError(t, err)

	code, err := c.RecordCode(context.Background(), "X")
	require.Error(t, err)
	assert.Equal(t, 0, code)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestTimeoutBounded(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(func() { close(block); srv.Close() })

	c, err := New(Config{BaseURL: srv.URL, NodeUUID: nodeID, ReaderUUID: readerID, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Heartbeat(context.Background(), "")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSuccess(t *testing.T) {
	assert.True(t, Success(200))
	assert.True(t, Success(299))
	assert.False(t, Success(199))
	assert.False(t, Success(300))
	assert.False(t, Success(0))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{NodeUUID: nodeID, ReaderUUID: readerID})
	assert.Error(t, err)
	_, err = New(Config{BaseURL: "http://x", ReaderUUID: readerID})
	assert.Error(t, err)
}

// ---- escape ----

func TestEscape_Table(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"AZaz09-_.~":       "AZaz09-_.~",
		"a b":              "a%20b",
		"x+y=z&w":          "x%2By%3Dz%26w",
		"/?#%":             "%2F%3F%23%25",
		"\r\n":             "%0D%0A",
		"\x7f":             "%7F",
		"http://a.b/c?d=e": "http%3A%2F%2Fa.b%2Fc%3Fd%3De",
	}
	for in, want := range cases {
		assert.Equal(t, want, Escape(in), "Escape(%q)", in)
	}
}

func TestEscape_RoundTripsASCII(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		b := make([]byte, r.Intn(80))
		for j := range b {
			b[j] = byte(r.Intn(128))
		}
		in := string(b)

		got, err := url.PathUnescape(Escape(in))
		require.NoError(t, err)
		assert.Equal(t, in, got)

		got, err = url.QueryUnescape(Escape(in))
		require.NoError(t, err)
		assert.Equal(t, in, got)
	}
}
