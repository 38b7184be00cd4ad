package log

import (
	"github.com/cockroachdb/errors"
)

// StackMarshaler is installed as zerolog.ErrorStackMarshaler so that error
// logs carry the stack recorded by cockroachdb/errors.WithStack.
func StackMarshaler(err error) interface{} {
	if s := extractStacktrace(err); s != "" {
		return s
	}
	return nil
}

// extractStacktrace returns the first safe detail found along the cause
// chain. Marks and wrappers sit above the WithStack layer, so the outermost
// error alone usually carries nothing.
func extractStacktrace(err error) string {
	for e := err; e != nil; e = errors.UnwrapOnce(e) {
		safeDetails := errors.GetSafeDetails(e).SafeDetails
		if len(safeDetails) > 0 && safeDetails[0] != "" {
			return safeDetails[0]
		}
	}
	return ""
}
