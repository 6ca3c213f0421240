package api

import (
	"context"
	"net/http"
	"time"

	"github.com/alwitt/goutils"
	"github.com/apex/log"
)

// ReadinessCheck reports whether a dependency is usable
type ReadinessCheck func(ctx context.Context) error

// HealthResponse health probe response
type HealthResponse struct {
	goutils.RestAPIBaseResponse
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthHandler liveness and readiness probes
type HealthHandler struct {
	goutils.RestAPIHandler
	checks       map[string]ReadinessCheck
	checkTimeout time.Duration
}

/*
NewHealthHandler define new health probe handler

	@param checks map[string]ReadinessCheck - named dependency checks run by the readiness probe
	@param checkTimeout time.Duration - time limit for all checks
	@returns handler
*/
func NewHealthHandler(checks map[string]ReadinessCheck, checkTimeout time.Duration) *HealthHandler {
	logTags := log.Fields{"package": "bluelight", "module": "api", "component": "health-handler"}
	return &HealthHandler{
		RestAPIHandler: goutils.RestAPIHandler{
			Component: goutils.Component{
				LogTags: logTags,
				LogTagModifiers: []goutils.LogMetadataModifier{
					goutils.ModifyLogMetadataByRestRequestParam,
				},
			},
		},
		checks:       checks,
		checkTimeout: checkTimeout,
	}
}

// Live godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health/live [get]
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, http.StatusOK, HealthResponse{
		RestAPIBaseResponse: h.GetStdRESTSuccessMsg(r.Context()),
		Status:              "ok",
		Timestamp:           time.Now().UTC(),
	})
}

// Ready godoc
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.checkTimeout)
	defer cancel()

	resp := HealthResponse{
		RestAPIBaseResponse: h.GetStdRESTSuccessMsg(r.Context()),
		Status:              "ok",
		Timestamp:           time.Now().UTC(),
		Checks:              map[string]string{},
	}
	respCode := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			log.WithError(err).WithFields(h.GetLogTagsForContext(r.Context())).
				WithField("dependency", name).
				Warn("Readiness check failed")
			resp.Checks[name] = "fail"
			resp.Status = "fail"
			respCode = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	if respCode != http.StatusOK {
		resp.RestAPIBaseResponse = h.GetStdRESTErrorMsg(
			r.Context(), respCode, "dependencies not ready", "",
		)
	}
	h.write(w, r, respCode, resp)
}

func (h *HealthHandler) write(w http.ResponseWriter, r *http.Request, respCode int, resp HealthResponse) {
	if err := h.WriteRESTResponse(w, respCode, resp, nil); err != nil {
		log.WithError(err).WithFields(h.GetLogTagsForContext(r.Context())).
			Error("Failed to write response")
	}
}
