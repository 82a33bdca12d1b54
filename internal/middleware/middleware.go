package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/DocRAG/internal/metrics"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

type Options struct {
	// AuthToken enables bearer authentication when set
	AuthToken string
	RateLimit bool
}

// Middleware runs trace injection, authentication and rate limiting in front of every handler
// and records request metrics.
type Middleware struct {
	authToken string
	limiter   *IPRateLimiter
}

func New(opts Options) *Middleware {
	m := &Middleware{authToken: opts.AuthToken}
	if opts.RateLimit {
		m.limiter = NewIPRateLimiter(rate.Limit(rateLimitPerSecond), burstRateLimit)
	}
	return m
}

func (m *Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := m.processRequest(requestResponseStruct{req: r, writer: rec})

		if !handleBadRequest(re) {
			metrics.HttpRequestsTotal.WithLabelValues(routeLabel(r), strconv.Itoa(rec.Status)).Inc()
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(routeLabel(r), strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func (m *Middleware) processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re.logger.Info("New request received", "method", re.req.Method, "path", re.req.URL.Path)

	re = m.authenticate(re)
	if re.badRequest.isBadRequest {
		return re //stop if auth fails
	}
	if m.limiter != nil {
		re = m.rateLimiter(re)
	}
	return re
}
