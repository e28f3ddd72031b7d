// Package utils holds small helpers shared by the ls3 binary.
package utils

import "go.uber.org/zap"

// NewLogger returns the service logger. Debug mode uses zap's development
// config (console encoding, debug level) for interactive runs; otherwise the
// production config (JSON, info level) for the server daemon.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
