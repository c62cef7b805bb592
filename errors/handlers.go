package errors

import (
	"go.uber.org/zap"
)

// LogError logs an error with its context
func LogError(logger *zap.Logger, err error, requestID string) {
	if guardianErr, ok := err.(*GuardianError); ok {
		logger.Error("request error",
			zap.String("error_type", string(guardianErr.Type)),
			zap.String("message", guardianErr.Message),
			zap.String("request_id", requestID),
			zap.Any("details", guardianErr.Details),
		)
	} else {
		logger.Error("unexpected error",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
	}
}
