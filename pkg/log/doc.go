// Package log is a small wrapper around the standard library logger that
// gives every service of the palette its own named logger.
//
// Every line carries the level and the service name:
//
//	2025/01/02 10:00:00.000000 WARN [remote>] projects endpoint failed org=:orgId
//
// Features:
//
//   - Named loggers via ForService(name), memoized per name
//   - Levels through Infof, Warnf, Errorf and Debugf
//   - Debug lines enabled globally (SetGlobalDebug) or per service
//     (EnableDebugFor / DisableDebugFor)
//   - Key/value fields with With, rendered as key=value after the message
//   - A single output writer (SetOutput) shared by every logger
//
// The package name collides with the standard library. Alias one
// of them when both are needed:
//
//	import (
//		stdlog "log"
//
//		"github.com/rubiojr/cmdk/pkg/log"
//	)
package log
