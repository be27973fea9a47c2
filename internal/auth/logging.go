package auth

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	authTypeLocal = "local"
	authTypeToken = "token"

	statusSuccess = "success"
	statusFail    = "fail"
)

// logAuthAttempt write one structured record per authentication attempt.
// Failures are logged at warn, success at info, token resolution at debug to keep noise low.
func logAuthAttempt(log *zap.Logger, level zapcore.Level, authType, status, identifier, message string) {
	fields := []zap.Field{
		zap.String("auth_type", authType),
		zap.String("status", status),
	}
	if identifier != "" {
		fields = append(fields, zap.String("identifier", identifier))
	}
	if ce := log.Check(level, message); ce != nil {
		ce.Write(fields...)
	}
}
