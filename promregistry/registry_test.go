package promregistry

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/instrument"
)

func gatherValue(t *testing.T, g *prometheus.Registry, name string) (float64, bool) {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.Len(t, mf.GetMetric(), 1)
			return mf.GetMetric()[0].GetGauge().GetValue(), true
		}
	}
	return 0, false
}

func TestRegistry_ScalarKey(t *testing.T) {
	prom := prometheus.NewRegistry()
	r := New(prom)

	key, update, err := r.Register("now/requests",
		instrument.KeySpec{Kind: instrument.KindInt64, Units: instrument.UnitsCount, Description: "requests"}, nil)
	require.NoError(t, err)
	require.Equal(t, "now/requests", key.Name)

	update(instrument.Int64Value(7))
	v, ok := gatherValue(t, prom, "now_requests")
	require.True(t, ok)
	require.InDelta(t, 7.0, v, 1e-9)
}

func TestRegistry_SummaryKeyFansOut(t *testing.T) {
	prom := prometheus.NewRegistry()
	r := New(prom)

	_, update, err := r.Register("now/latency",
		instrument.KeySpec{Kind: instrument.KindSummary, Units: instrument.UnitsMilliseconds}, nil)
	require.NoError(t, err)

	s := instrument.SummaryOf(2)
	update(instrument.SummaryValue(s))

	for name, want := range map[string]float64{
		"now_latency_count": 1,
		"now_latency_sum":   2,
		"now_latency_min":   2,
		"now_latency_max":   2,
		"now_latency_mean":  2,
	} {
		v, ok := gatherValue(t, prom, name)
		require.True(t, ok, "missing family %q", name)
		require.InDelta(t, want, v, 1e-9, "family %q", name)
	}
}

func TestRegistry_LightAndStringKeys(t *testing.T) {
	prom := prometheus.NewRegistry()
	r := New(prom)

	_, lightUpdate, err := r.Register("now/health",
		instrument.KeySpec{Kind: instrument.KindLight, Units: instrument.UnitsTrafficLight}, nil)
	require.NoError(t, err)
	lightUpdate(instrument.LightValue(instrument.LightGreen))
	v, ok := gatherValue(t, prom, "now_health")
	require.True(t, ok)
	require.InDelta(t, 2.0, v, 1e-9)

	_, strUpdate, err := r.Register("now/state", instrument.KeySpec{Kind: instrument.KindString}, nil)
	require.NoError(t, err)
	strUpdate(instrument.StringValue("active"))
	families, err := prom.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() != "now_state" {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		m := mf.GetMetric()[0]
		require.Equal(t, "value", m.GetLabel()[0].GetName())
		require.Equal(t, "active", m.GetLabel()[0].GetValue())
		found = true
	}
	require.True(t, found)
}

func TestRegistry_CollisionMismatchUnregister(t *testing.T) {
	prom := prometheus.NewRegistry()
	r := New(prom)

	_, _, err := r.Register("now/x", instrument.KeySpec{Kind: instrument.KindInt64}, nil)
	require.NoError(t, err)

	_, _, err = r.Register("now/x", instrument.KeySpec{Kind: instrument.KindInt64}, nil)
	require.ErrorIs(t, err, instrument.ErrNamingCollision)

	_, _, err = r.Register("now/x", instrument.KeySpec{Kind: instrument.KindSummary}, nil)
	require.ErrorIs(t, err, instrument.ErrTypeMismatch)

	require.NoError(t, r.Unregister("now/x"))
	require.ErrorIs(t, r.Unregister("now/x"), instrument.ErrNotRegistered)

	// name and collectors are free again
	_, _, err = r.Register("now/x", instrument.KeySpec{Kind: instrument.KindInt64}, nil)
	require.NoError(t, err)
}

// The full facade runs against the Prometheus-backed registry.
func TestRegistry_WithFactory(t *testing.T) {
	prom := prometheus.NewRegistry()
	mock := clock.NewMock()
	f, err := instrument.New(New(prom), instrument.WithClock(mock), instrument.WithDefaultWindow(time.Second))
	require.NoError(t, err)
	defer f.Close()

	c, err := f.Counter("requests", 0, instrument.WithUnits(instrument.UnitsCount))
	require.NoError(t, err)

	mock.Add(10 * time.Millisecond)
	c.Append(3)
	mock.Add(time.Second)

	require.Eventually(t, func() bool {
		v, ok := gatherValue(t, prom, "previous_requests")
		return ok && v == 3
	}, time.Second, time.Millisecond)
}
