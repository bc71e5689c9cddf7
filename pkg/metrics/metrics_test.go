package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it should use its own registry", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldNotBeNil)
				So(manager.Registry(), ShouldNotPointTo, GetRegistry())
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithLatencyBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordCacheHit()

			Convey("Then metric names and labels should reflect the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, mf := range families {
					if mf.GetName() == "test_namespace_test_subsystem_cache_hits_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
						So(mf.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a fresh manager", t, func() {
		m := NewManager()

		Convey("When recording recommendation outcomes", func() {
			m.RecordRecommendation(OutcomeOK, 0.4)
			m.RecordRecommendation(OutcomeOK, 0.6)
			m.RecordRecommendation(OutcomeNotFound, 0.1)

			Convey("Then counters should be split by outcome", func() {
				So(testutil.ToFloat64(m.recommendations.WithLabelValues(OutcomeOK)), ShouldEqual, 2.0)
				So(testutil.ToFloat64(m.recommendations.WithLabelValues(OutcomeNotFound)), ShouldEqual, 1.0)
				So(testutil.ToFloat64(m.recommendations.WithLabelValues(OutcomeUnavailable)), ShouldEqual, 0.0)
			})
		})

		Convey("When recording cache traffic", func() {
			m.RecordCacheHit()
			m.RecordCacheMiss()
			m.RecordCacheMiss()

			Convey("Then hits and misses should be counted", func() {
				So(testutil.ToFloat64(m.cacheHits), ShouldEqual, 1.0)
				So(testutil.ToFloat64(m.cacheMisses), ShouldEqual, 2.0)
			})
		})

		Convey("When updating table gauges", func() {
			m.UpdateTable(120, 14, 3.5)
			m.RecordTableLoadError()

			Convey("Then the gauges should hold the latest values", func() {
				So(testutil.ToFloat64(m.tableRows), ShouldEqual, 120.0)
				So(testutil.ToFloat64(m.tableCities), ShouldEqual, 14.0)
				So(testutil.ToFloat64(m.tableLoadTime), ShouldEqual, 3.5)
				So(testutil.ToFloat64(m.tableLoadErrors), ShouldEqual, 1.0)
			})
		})

		Convey("When recording result sizes", func() {
			Convey("Then it should not panic", func() {
				So(func() { m.RecordResult(5, 42) }, ShouldNotPanic)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a manager with recorded metrics", t, func() {
		m := NewManager()
		m.RecordRecommendation(OutcomeOK, 1)

		Convey("When writing a textfile", func() {
			path := filepath.Join(t.TempDir(), "getaway.prom")
			err := m.WriteTextfile(path)

			Convey("Then the file should contain the exposition", func() {
				So(err, ShouldBeNil)
				b, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `getaway_recommender_requests_total{outcome="ok"} 1`)
			})
		})

		Convey("When the directory does not exist", func() {
			err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "getaway.prom"))

			Convey("Then it should return an export error", func() {
				So(errors.Is(err, ErrExport), ShouldBeTrue)
			})
		})
	})
}

func TestDefaultManager(t *testing.T) {
	Convey("Given the process-wide manager", t, func() {
		Convey("Then it should be registered on the custom registry", func() {
			So(Default(), ShouldNotBeNil)
			So(Default().Registry(), ShouldPointTo, GetRegistry())
		})
	})
}
