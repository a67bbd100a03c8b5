package knora

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mls_knora_requests_total",
		Help: "Number of requests sent to the Knora API, by operation and response status.",
	}, []string{"op", "status"})
	mRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "mls_knora_request_seconds",
		Help: "Time to complete a Knora API request, including retries.",
	}, []string{"op"})
)

// statusLabel is the status label value; transport failures have no status.
func statusLabel(code int) string {
	if code == 0 {
		return "error"
	}
	return strconv.Itoa(code)
}
