// Package results carries the success/failure split used by application services.
//
// A Failure is a domain outcome (the request was understood and refused). Infrastructure
// problems are returned as plain errors next to the result instead.
package results

// OperationResult holds exactly one of Success or Failure when the operation completed.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// SuccessResult wraps a success payload.
func SuccessResult[S any, F any](s S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &s}
}

// FailureResult wraps a failure payload.
func FailureResult[S any, F any](f F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &f}
}

// IsSuccess reports whether the result carries a success payload.
func (r OperationResult[S, F]) IsSuccess() bool {
	return r.Success != nil
}

// IsFailure reports whether the result carries a failure payload.
func (r OperationResult[S, F]) IsFailure() bool {
	return r.Failure != nil
}
