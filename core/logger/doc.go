// Package logger builds the zap logger shared by the commands and the HTTP server.
//
// Level accepts any zap level name (debug, info, warn, error) in any case;
// debug switches to zap's development preset. Format is json, the default, or
// console with colored levels and ISO8601 timestamps. New rejects anything else.
//
// Handlers call WithRayID to tag their lines with the request's ray id:
//
//	l := logger.WithRayID(log, c)
//	l.Warn("Sync rejected", zap.Error(err))
package logger
