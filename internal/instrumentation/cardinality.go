package instrumentation

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Label values that originate on the wire (method names, tool names) must be
// bounded before recording. Tool names are bounded by construction because
// invocations are only recorded after a catalog lookup succeeds; method names
// are normalized here. Document IDs, spreadsheet IDs, ranges, and search
// queries are never recorded as metric labels.

// NormalizeMethod maps a client-supplied JSON-RPC method name onto the
// bounded set of methods the dispatcher routes. Anything else collapses to
// "unknown" so a misbehaving client cannot mint new label values.
//
// Note: The method names are intentionally duplicated from the protocol
// package so instrumentation stays free of sibling-package dependencies.
func NormalizeMethod(method string) string {
	switch method {
	case "initialize", "tools/list", "tools/call", "ping":
		return method
	default:
		return StatusUnknown
	}
}

// Common operation types for Google API metrics.
// Status, OAuth, Service, and Transport constants are defined in config.go.
const (
	OperationGet    = "get"
	OperationSearch = "search"
	OperationValues = "values"
)
