package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alwitt/bluelight/api"
	mocketb "github.com/alwitt/bluelight/mocks/etb"
	"github.com/alwitt/bluelight/models"
	"github.com/apex/log"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

var testSecret = []byte("bluelight-unit-test-secret")

const testIssuer = "bluelight-ut"

var testActor = models.Actor{ID: "user-1", Name: "Max Muster", Role: "EL"}

type testAPI struct {
	router  *mux.Router
	service *mocketb.Service
	token   string
}

// newTestAPI build the full router on top of a mocked entry service
func newTestAPI(t *testing.T, systemActor *models.Actor, checks map[string]api.ReadinessCheck) testAPI {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	service := mocketb.NewService(t)

	entries, err := api.NewEntryHandler(service, 1024, "X-Request-ID", []string{"User-Agent"})
	assert.Nil(err)

	auth, err := api.NewAuthenticator(api.AuthenticatorParams{
		JWTSecret: testSecret, JWTIssuer: testIssuer, SystemActor: systemActor,
	})
	assert.Nil(err)

	token, err := api.IssueToken(testSecret, testIssuer, testActor, time.Hour)
	assert.Nil(err)

	router := api.BuildRouter(api.RouterParams{
		Entries:       entries,
		Health:        api.NewHealthHandler(checks, time.Second),
		Authenticator: auth,
		MetricsPath:   "/metrics",
	})

	return testAPI{router: router, service: service, token: token}
}

// call send a request through the router, authenticated when token is not empty
func (a testAPI) call(
	method, path string, body interface{}, token string,
) *httptest.ResponseRecorder {
	var payload io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		payload = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		payload = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("X-Request-ID", "ut-request")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	a.router.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, target interface{}) {
	assert.Nil(t, json.Unmarshal(resp.Body.Bytes(), target))
}

func staticCheck(err error) api.ReadinessCheck {
	return func(_ context.Context) error { return err }
}
