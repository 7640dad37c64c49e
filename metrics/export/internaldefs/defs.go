package internaldefs

import (
	goGuard "github.com/MrEthical07/goGuard"
)

// CounterDef defines a public type used by goGuard APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goGuard.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goGuard APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goGuard.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the token lifecycle engine.
var CounterDefs = []CounterDef{
	{ID: goGuard.MetricIssueSuccess, Name: "goguard_issue_success_total", Help: "Successful token pair issuances."},
	{ID: goGuard.MetricIssueFailure, Name: "goguard_issue_failure_total", Help: "Failed token pair issuances."},
	{ID: goGuard.MetricRotateSuccess, Name: "goguard_rotate_success_total", Help: "Successful access token rotations."},
	{ID: goGuard.MetricRotateFailure, Name: "goguard_rotate_failure_total", Help: "Failed access token rotations."},
	{ID: goGuard.MetricValidateSuccess, Name: "goguard_validate_success_total", Help: "Successful validations."},
	{ID: goGuard.MetricValidateFailure, Name: "goguard_validate_failure_total", Help: "Failed validations, all causes."},
	{ID: goGuard.MetricValidateExpired, Name: "goguard_validate_expired_total", Help: "Validations rejected for expiry."},
	{ID: goGuard.MetricValidateSuperseded, Name: "goguard_validate_superseded_total", Help: "Validations rejected as superseded."},
	{ID: goGuard.MetricRevokeOne, Name: "goguard_revoke_one_total", Help: "Single-purpose revocations."},
	{ID: goGuard.MetricRevokeAll, Name: "goguard_revoke_all_total", Help: "Revoke-all operations."},
	{ID: goGuard.MetricRoleResolveFailure, Name: "goguard_role_resolve_failure_total", Help: "Failed role resolutions."},
	{ID: goGuard.MetricRateLimitAdmitted, Name: "goguard_rate_limit_admitted_total", Help: "Rate-limit checks that admitted requests."},
	{ID: goGuard.MetricRateLimitRejected, Name: "goguard_rate_limit_rejected_total", Help: "Rate-limit checks that denied requests."},
}

// HistogramDefs is an exported constant or variable used by the token lifecycle engine.
var HistogramDefs = []HistogramDef{
	{ID: goGuard.MetricValidateLatency, Name: "goguard_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the token lifecycle engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the token lifecycle engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed
// exporter shape.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
