package sse

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flushRecorder counts flushes on top of a ResponseRecorder.
type flushRecorder struct {
	*httptest.ResponseRecorder
	flushes int
}

func (f *flushRecorder) Flush() { f.flushes++ }

func newFlushRecorder() *flushRecorder {
	return &flushRecorder{ResponseRecorder: httptest.NewRecorder()}
}

func TestWriter_StartSetsHeadersOnce(t *testing.T) {
	rec := newFlushRecorder()
	w := NewWriter(rec)

	require.NoError(t, w.Start())
	require.NoError(t, w.Start())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
	assert.Equal(t, 1, rec.flushes)
}

func TestWriter_WriteEvent(t *testing.T) {
	rec := newFlushRecorder()
	w := NewWriter(rec)
	require.NoError(t, w.Start())

	require.NoError(t, w.WriteEvent(string(EventToken), NewTokenEvent("Hel")))
	require.NoError(t, w.WriteData(map[string]int{"n": 1}))

	assert.Equal(t,
		"event: token\ndata: {\"type\":\"token\",\"token\":\"Hel\"}\n\n"+
			"data: {\"n\":1}\n\n",
		rec.Body.String())
	assert.Equal(t, 3, rec.flushes)
}

func TestWriter_CommentAndRetry(t *testing.T) {
	rec := newFlushRecorder()
	w := NewWriter(rec)

	require.NoError(t, w.WriteRetry(1500*time.Millisecond))
	require.NoError(t, w.WriteComment("keep-alive"))

	assert.Equal(t, "retry: 1500\n\n: keep-alive\n\n", rec.Body.String())
}

func TestWriter_Closed(t *testing.T) {
	rec := newFlushRecorder()
	w := NewWriter(rec)
	assert.False(t, w.IsClosed())

	w.Close()
	assert.True(t, w.IsClosed())

	assert.ErrorIs(t, w.WriteEvent("state", 1), ErrClosed)
	assert.ErrorIs(t, w.WriteComment("x"), ErrClosed)
	assert.ErrorIs(t, w.Start(), ErrClosed)
	assert.Empty(t, rec.Body.String())
}

func TestWriter_MarshalError(t *testing.T) {
	w := NewWriter(newFlushRecorder())
	err := w.WriteEvent("state", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal SSE data")
}

func TestWriter_WithoutFlusher(t *testing.T) {
	var rw http.ResponseWriter = &plainWriter{header: http.Header{}}
	w := NewWriter(rw)
	require.NoError(t, w.Start())
	require.NoError(t, w.WriteEvent("done", NewDoneEvent("ok")))
}

type plainWriter struct {
	header http.Header
	fail   bool
}

func (p *plainWriter) Header() http.Header { return p.header }
func (p *plainWriter) Write(b []byte) (int, error) {
	if p.fail {
		return 0, errors.New("broken pipe")
	}
	return len(b), nil
}
func (p *plainWriter) WriteHeader(int) {}

func TestWriter_PropagatesWriteError(t *testing.T) {
	w := NewWriter(&plainWriter{header: http.Header{}, fail: true})
	assert.Error(t, w.WriteEvent("token", NewTokenEvent("x")))
	assert.Error(t, w.WriteComment("ping"))
}
