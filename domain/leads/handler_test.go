package leads

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getcalls/website/domain/views"
	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/internal/testutil"
	"github.com/getcalls/website/pkg/toast"
)

func newTestServer(t *testing.T, sender *fakeSender) (*echo.Echo, *views.Registry) {
	t.Helper()
	log := testutil.DiscardLogger()
	registry := views.NewRegistryWithClock(config.ViewsConfig{}, toast.NewManualClock(time.Now()), log)

	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{LeadsPerMinute: 60, LeadsBurst: 3}

	var svc *Service
	if sender == nil {
		svc = NewService(nil, nil, cfg, log)
	} else {
		svc = NewService(nil, sender, cfg, log)
	}

	e := testutil.NewEcho()
	RegisterRoutes(e, NewHandler(svc, registry, log), NewLimiter(cfg))
	return e, registry
}

func TestHandler_SubmitJSON(t *testing.T) {
	sender := &fakeSender{}
	e, registry := newTestServer(t, sender)
	v := registry.Create()

	var res Result
	testutil.Do(e, http.MethodPost, "/api/views/"+v.ID+"/leads", map[string]string{
		"name":          "John Doe",
		"phone":         "9876543210",
		"email":         "john@example.com",
		"business_type": "food",
		"message":       "Website for my cafe please",
	}).Status(t, http.StatusOK).JSON(t, &res)

	assert.Equal(t, StatusSent, res.Status)
	assert.Len(t, sender.messages(), 2)
}

func TestHandler_SubmitForm(t *testing.T) {
	e, registry := newTestServer(t, nil)
	v := registry.Create()

	form := url.Values{}
	form.Set("name", "John Doe")
	form.Set("phone", "9876543210")
	form.Set("email", "john@example.com")
	form.Set("business_type", "agency")
	form.Set("message", "We need a landing page")

	var res Result
	testutil.Do(e, http.MethodPost, "/api/views/"+v.ID+"/leads", form).Status(t, http.StatusOK).JSON(t, &res)
	assert.Equal(t, StatusUnconfigured, res.Status)
	assert.NotEmpty(t, res.Mailto)
}

func TestHandler_SubmitInvalid(t *testing.T) {
	sender := &fakeSender{}
	e, registry := newTestServer(t, sender)
	v := registry.Create()

	res := testutil.Do(e, http.MethodPost, "/api/views/"+v.ID+"/leads", Form{Name: "J"}).
		Status(t, http.StatusUnprocessableEntity)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Fields map[string]string `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	res.JSON(t, &body)
	assert.Equal(t, ErrMsgName, body.Error.Details.Fields["name"])
	assert.Len(t, body.Error.Details.Fields, 5)
	assert.Empty(t, sender.messages())
}

func TestHandler_UnknownView(t *testing.T) {
	e, _ := newTestServer(t, &fakeSender{})

	res := testutil.Do(e, http.MethodPost, "/api/views/missing/leads", validForm()).Status(t, http.StatusNotFound)
	assert.Equal(t, "view_not_found", res.ErrorCode(t))
}

func TestHandler_RateLimited(t *testing.T) {
	e, registry := newTestServer(t, &fakeSender{})
	v := registry.Create()

	for i := 0; i < 3; i++ {
		testutil.Do(e, http.MethodPost, "/api/views/"+v.ID+"/leads", Form{}).Status(t, http.StatusUnprocessableEntity)
	}
	res := testutil.Do(e, http.MethodPost, "/api/views/"+v.ID+"/leads", Form{}).Status(t, http.StatusTooManyRequests)
	assert.Equal(t, "rate_limited", res.ErrorCode(t))
}

func TestHandler_BusinessTypes(t *testing.T) {
	e, _ := newTestServer(t, nil)

	var out []map[string]string
	testutil.Do(e, http.MethodGet, "/api/leads/business-types", nil).Status(t, http.StatusOK).JSON(t, &out)
	require.Len(t, out, len(BusinessTypes))
	assert.Equal(t, "coach", out[0]["value"])
}
