package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveTurn("fill_fields", 10*time.Millisecond, nil)
	m.ObserveTurn("fill_fields", 10*time.Millisecond, errors.New("boom"))
	m.ObserveDelegate("scripted", time.Millisecond, nil)
	m.ObserveArtifact("overlay")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues("fill_fields", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues("fill_fields", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.delegateTotal.WithLabelValues("scripted", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.artifactsTotal.WithLabelValues("overlay")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTurn("select_form", time.Second, nil)
		m.ObserveDelegate("x", time.Second, nil)
		m.ObserveArtifact("form")
	})
}
