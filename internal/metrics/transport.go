package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InstrumentClient returns a copy of client whose transport records request
// counts and durations under the given provider label.
func (r *Registry) InstrumentClient(provider string, client *http.Client) *http.Client {
	next := client.Transport
	if next == nil {
		next = http.DefaultTransport
	}

	labels := prometheus.Labels{"provider": provider}
	rt := promhttp.InstrumentRoundTripperCounter(
		r.providerRequests.MustCurryWith(labels),
		promhttp.InstrumentRoundTripperDuration(
			r.providerDuration.MustCurryWith(labels),
			next,
		),
	)

	instrumented := *client
	instrumented.Transport = rt
	return &instrumented
}
