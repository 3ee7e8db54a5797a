// Package sl provides small slog helpers shared by every package that
// logs errors, mirroring the shape the rest of the call sites expect
// from a logger/sl package.
package sl

import "log/slog"

// Err wraps err as a slog.Attr under the conventional "error" key.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
