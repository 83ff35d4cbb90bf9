// Package metrics defines Prometheus instrumentation for the scan
// pipeline, thumbnail cache, and index store. Metrics register on the
// default registry via promauto at package load.
package metrics
