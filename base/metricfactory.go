package base

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/relex/gotils/logger"
)

// MetricFactory manages Prometheus metrics with a shared name prefix and fixed labels
//
// All metrics created from one factory and its sub-factories are registered to the same private
// registry, so that independent pipelines (e.g. in tests) never collide on metric names.
type MetricFactory struct {
	namePrefix  string
	constLabels prometheus.Labels
	lock        *sync.Mutex
	registry    *prometheus.Registry
	collectors  map[string]prometheus.Collector
}

// NewMetricFactory creates a factory with prefix for metric names and fixed labels for all metrics created from it
func NewMetricFactory(prefix string, labelNames []string, labelValues []string) *MetricFactory {
	return &MetricFactory{
		namePrefix:  prefix,
		constLabels: buildLabels(labelNames, labelValues),
		lock:        &sync.Mutex{},
		registry:    prometheus.NewPedanticRegistry(),
		collectors:  make(map[string]prometheus.Collector, 100),
	}
}

// NewSubFactory creates a sub-factory which inherits the parent's prefix and fixed labels,
// with more prefix and fixed labels added to all metrics created from this new sub-factory
func (factory *MetricFactory) NewSubFactory(prefix string, labelNames []string, labelValues []string) *MetricFactory {
	allLabels := prometheus.Labels{}
	for name, value := range factory.constLabels {
		allLabels[name] = value
	}
	for name, value := range buildLabels(labelNames, labelValues) {
		allLabels[name] = value
	}
	return &MetricFactory{
		namePrefix:  factory.namePrefix + prefix,
		constLabels: allLabels,
		lock:        factory.lock,
		registry:    factory.registry,
		collectors:  factory.collectors,
	}
}

// Registry returns the underlying registry, e.g. to serve it over HTTP
func (factory *MetricFactory) Registry() *prometheus.Registry {
	return factory.registry
}

// AddOrGetCounter adds or gets a counter
func (factory *MetricFactory) AddOrGetCounter(name string, help string, labelNames []string, labelValues []string) prometheus.Counter {
	return factory.AddOrGetCounterVec(name, help, labelNames).WithLabelValues(labelValues...)
}

// AddOrGetCounterVec adds or gets a counter-vec
func (factory *MetricFactory) AddOrGetCounterVec(name string, help string, labelNames []string) *prometheus.CounterVec {
	fullName := factory.namePrefix + name

	factory.lock.Lock()
	defer factory.lock.Unlock()
	if collector, ok := factory.collectors[fullName]; ok {
		return collector.(*prometheus.CounterVec)
	}
	counterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        fullName,
		Help:        help,
		ConstLabels: factory.constLabels,
	}, labelNames)
	if err := factory.registry.Register(counterVec); err != nil {
		logger.Panicf("failed to register counter-vec '%s': %s", fullName, err.Error())
	}
	factory.collectors[fullName] = counterVec
	return counterVec
}

// AddOrGetGauge adds or gets a gauge
//
// Gauges must be updated by Add/Sub not Set, because there could be multiple updaters
func (factory *MetricFactory) AddOrGetGauge(name string, help string, labelNames []string, labelValues []string) prometheus.Gauge {
	return factory.AddOrGetGaugeVec(name, help, labelNames).WithLabelValues(labelValues...)
}

// AddOrGetGaugeVec adds or gets a gauge-vec
func (factory *MetricFactory) AddOrGetGaugeVec(name string, help string, labelNames []string) *prometheus.GaugeVec {
	fullName := factory.namePrefix + name

	factory.lock.Lock()
	defer factory.lock.Unlock()
	if collector, ok := factory.collectors[fullName]; ok {
		return collector.(*prometheus.GaugeVec)
	}
	gaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        fullName,
		Help:        help,
		ConstLabels: factory.constLabels,
	}, labelNames)
	if err := factory.registry.Register(gaugeVec); err != nil {
		logger.Panicf("failed to register gauge-vec '%s': %s", fullName, err.Error())
	}
	factory.collectors[fullName] = gaugeVec
	return gaugeVec
}

// AddCounterFunc registers a counter backed by the given read function, e.g. a hot-path xsync counter
func (factory *MetricFactory) AddCounterFunc(name string, help string, read func() float64) {
	fullName := factory.namePrefix + name

	factory.lock.Lock()
	defer factory.lock.Unlock()
	if _, ok := factory.collectors[fullName]; ok {
		logger.Panicf("counter-func '%s' is already registered", fullName)
	}
	counterFunc := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name:        fullName,
		Help:        help,
		ConstLabels: factory.constLabels,
	}, read)
	if err := factory.registry.Register(counterFunc); err != nil {
		logger.Panicf("failed to register counter-func '%s': %s", fullName, err.Error())
	}
	factory.collectors[fullName] = counterFunc
}

// DumpMetrics dumps all metrics of the registry shared by this factory, its parent and its sub-factories into the .prom
// text format without comments, ordered by metric name and then by label values
//
// For testing only
func (factory *MetricFactory) DumpMetrics() (string, error) {
	metricFamilies, err := factory.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("failed to gather metrics: %w", err)
	}
	writer := &bytes.Buffer{}
	for _, mf := range metricFamilies {
		if _, err := expfmt.MetricFamilyToText(writer, mf); err != nil {
			return "", fmt.Errorf("failed to export '%s': %w", *mf.Name, err)
		}
	}
	lines := strings.Split(writer.String(), "\n")
	selected := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(line) > 0 && !strings.HasPrefix(line, "#") {
			selected = append(selected, line)
		}
	}
	return strings.Join(selected, "\n") + "\n", nil
}

func buildLabels(labelNames []string, labelValues []string) prometheus.Labels {
	if len(labelNames) != len(labelValues) {
		logger.Panicf("different lengths of labelNames (%s) and labelValues (%s)",
			strings.Join(labelNames, ","), strings.Join(labelValues, ","))
	}
	labels := prometheus.Labels{}
	for i, name := range labelNames {
		labels[name] = labelValues[i]
	}
	return labels
}
