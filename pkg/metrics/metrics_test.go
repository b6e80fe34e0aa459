package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"mailguard/pkg/metrics"
)

type fakeCache struct {
	version uint64
	size    int
}

func (f fakeCache) CurrentVersion() uint64 { return f.version }
func (f fakeCache) Size() int              { return f.size }

func TestHTTP_Instrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewHTTP(reg)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	handler := m.Instrument(mux)

	for _, path := range []string{"/items/1", "/items/2", "/nowhere"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	mfs, err := reg.Gather()
	require.NoError(t, err)
	routes := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "route" {
					routes[label.GetValue()] += metric.GetCounter().GetValue()
				}
			}
		}
	}
	require.Equal(t, map[string]float64{"GET /items/{id}": 2, "unmatched": 1}, routes)

	// registering twice reuses the existing collectors
	_, err = metrics.NewHTTP(reg)
	require.NoError(t, err)
}

func TestRegisterCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.RegisterCache(reg, fakeCache{version: 4, size: 120}))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range mfs {
		values[mf.GetName()] = mf.GetMetric()[0].GetGauge().GetValue()
	}
	require.Equal(t, float64(4), values["mailguard_domain_cache_version"])
	require.Equal(t, float64(120), values["mailguard_domain_cache_size"])
}
