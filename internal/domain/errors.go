package domain

import "errors"

// Sentinel errors for the failure taxonomy the trading loop distinguishes.
// All of them are recoverable: the loop logs and proceeds to the next tick.
var (
	// ErrConnectivity marks transport-level failures: the venue or its
	// gateway is unreachable, or the RPC failed outright.
	ErrConnectivity = errors.New("venue unreachable")

	// ErrOrderRejected marks an order the venue refused (stale price,
	// insufficient funds at submission time, invalid size).
	ErrOrderRejected = errors.New("order rejected")

	// ErrSettlement marks a failed settlement call.
	ErrSettlement = errors.New("settlement failed")

	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
)

// ErrorKind classifies err into one of the taxonomy buckets for structured
// logging. Unrecognised errors report as "unknown".
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrOrderRejected):
		return "order_rejected"
	case errors.Is(err, ErrSettlement):
		return "settlement"
	case errors.Is(err, ErrConnectivity):
		return "connectivity"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "unknown"
	}
}
