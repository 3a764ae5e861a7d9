package views

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/internal/testutil"
	"github.com/getcalls/website/pkg/toast"
)

func newTestServer(t *testing.T) (*echo.Echo, *Registry, *toast.ManualClock) {
	t.Helper()
	r, clock := newTestRegistry(config.ViewsConfig{})
	h := NewHandler(r, &config.Config{Views: config.ViewsConfig{KeepAlive: time.Hour}}, testutil.DiscardLogger())
	e := testutil.NewEcho()
	RegisterRoutes(e, h)
	return e, r, clock
}

func TestHandler_CreateAndGetState(t *testing.T) {
	e, r, _ := newTestServer(t)

	var created Snapshot
	testutil.Do(e, http.MethodPost, "/api/views", nil).Status(t, http.StatusCreated).JSON(t, &created)
	require.NotEmpty(t, created.ViewID)
	assert.Equal(t, 1, r.Count())

	var state Snapshot
	testutil.Do(e, http.MethodGet, "/api/views/"+created.ViewID+"/state", nil).Status(t, http.StatusOK).JSON(t, &state)
	assert.Equal(t, created.ViewID, state.ViewID)
	assert.Empty(t, state.Modal.ActiveID)
	assert.Empty(t, state.Toasts)
}

func TestHandler_UnknownView(t *testing.T) {
	e, _, _ := newTestServer(t)

	res := testutil.Do(e, http.MethodGet, "/api/views/nope/state", nil).Status(t, http.StatusNotFound)
	assert.Equal(t, "view_not_found", res.ErrorCode(t))
}

func TestHandler_ModalOpenClose(t *testing.T) {
	e, r, _ := newTestServer(t)
	v := r.Create()
	base := "/api/views/" + v.ID

	var opened Snapshot
	testutil.Do(e, http.MethodPost, base+"/modal", OpenModalRequest{
		ID:      "contact",
		Payload: map[string]any{"plan": "Pro"},
	}).Status(t, http.StatusOK).JSON(t, &opened)
	assert.Equal(t, "contact", opened.Modal.ActiveID)
	assert.Equal(t, "Pro", opened.Modal.Payload["plan"])

	// opening another dialog replaces the first one and its payload
	var replaced Snapshot
	testutil.Do(e, http.MethodPost, base+"/modal", OpenModalRequest{ID: "payment"}).Status(t, http.StatusOK).JSON(t, &replaced)
	assert.Equal(t, "payment", replaced.Modal.ActiveID)
	assert.Empty(t, replaced.Modal.Payload)
	assert.Empty(t, v.Modal.Payload())

	var closed Snapshot
	testutil.Do(e, http.MethodDelete, base+"/modal", nil).Status(t, http.StatusOK).JSON(t, &closed)
	assert.Empty(t, closed.Modal.ActiveID)
	assert.Empty(t, closed.Modal.Payload)
	assert.False(t, v.Modal.IsOpen("payment"))
}

func TestHandler_ModalValidation(t *testing.T) {
	e, r, _ := newTestServer(t)
	base := "/api/views/" + r.Create().ID

	testutil.Do(e, http.MethodPost, base+"/modal", OpenModalRequest{ID: "  "}).Status(t, http.StatusBadRequest)
	testutil.Do(e, http.MethodPost, base+"/modal", OpenModalRequest{ID: strings.Repeat("x", 65)}).Status(t, http.StatusBadRequest)
	testutil.Do(e, http.MethodPost, base+"/modal", "{not json").Status(t, http.StatusBadRequest)
}

func TestHandler_EscapeKey(t *testing.T) {
	e, r, _ := newTestServer(t)
	v := r.Create()
	base := "/api/views/" + v.ID

	// pressing escape with nothing open changes nothing
	var snap Snapshot
	testutil.Do(e, http.MethodPost, base+"/keys", KeyRequest{Key: "Escape"}).Status(t, http.StatusOK).JSON(t, &snap)
	assert.Equal(t, uint64(0), snap.Seq)

	v.Modal.Open("contact", nil)
	testutil.Do(e, http.MethodPost, base+"/keys", KeyRequest{Key: "Tab"}).Status(t, http.StatusOK).JSON(t, &snap)
	assert.Equal(t, "contact", snap.Modal.ActiveID)

	testutil.Do(e, http.MethodPost, base+"/keys", KeyRequest{Key: "Escape"}).Status(t, http.StatusOK).JSON(t, &snap)
	assert.Empty(t, snap.Modal.ActiveID)

	testutil.Do(e, http.MethodPost, base+"/keys", KeyRequest{}).Status(t, http.StatusBadRequest)
}

func TestHandler_DismissToast(t *testing.T) {
	e, r, clock := newTestServer(t)
	v := r.Create()
	id := v.Toast("Request sent", toast.KindSuccess, 4*time.Second)
	base := "/api/views/" + v.ID

	var snap Snapshot
	testutil.Do(e, http.MethodDelete, base+"/toasts/"+jsonNumber(id), nil).Status(t, http.StatusOK).JSON(t, &snap)
	assert.Empty(t, snap.Toasts)
	assert.Equal(t, 0, clock.Pending())

	// already gone: still fine
	testutil.Do(e, http.MethodDelete, base+"/toasts/"+jsonNumber(id), nil).Status(t, http.StatusOK)
	testutil.Do(e, http.MethodDelete, base+"/toasts/abc", nil).Status(t, http.StatusBadRequest)
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

// readEvent reads one event block from a live stream, skipping comments and
// the retry hint.
func readEvent(t *testing.T, rd *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := rd.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if data != "" {
				return name, data
			}
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestHandler_EventsStream(t *testing.T) {
	e, r, _ := newTestServer(t)
	v := r.Create()

	srv := httptest.NewServer(e)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/views/"+v.ID+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	rd := bufio.NewReader(resp.Body)

	name, data := readEvent(t, rd)
	assert.Equal(t, "state", name)
	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(data), &snap))
	assert.Empty(t, snap.Modal.ActiveID)

	require.Eventually(t, func() bool { return v.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	v.Modal.Open("contact", map[string]any{"plan": "Business"})
	name, data = readEvent(t, rd)
	assert.Equal(t, "state", name)
	require.NoError(t, json.Unmarshal([]byte(data), &snap))
	assert.Equal(t, "contact", snap.Modal.ActiveID)
	assert.Equal(t, "Business", snap.Modal.Payload["plan"])

	v.Keys.Press("Escape")
	_, data = readEvent(t, rd)
	require.NoError(t, json.Unmarshal([]byte(data), &snap))
	assert.Empty(t, snap.Modal.ActiveID)

	r.Remove(v.ID)
	name, _ = readEvent(t, rd)
	assert.Equal(t, "done", name)
}

func TestHandler_EventsUnknownView(t *testing.T) {
	e, _, _ := newTestServer(t)
	res := testutil.Do(e, http.MethodGet, "/api/views/gone/events", nil).Status(t, http.StatusNotFound)
	assert.Equal(t, "application/json", strings.Split(res.Header().Get("Content-Type"), ";")[0])
}
