package zireael

import "go.uber.org/zap"

// logSink is the engine's pluggable diagnostic log target (spec §9: "No
// globals for log sink... tests replace it at the entry point"). zap is
// the structured-logging library already present in the example corpus
// (vibetunnel's linux backend); the engine never shells out to a global
// logger, it always holds a *zap.Logger value.
type logSink struct {
	logger *zap.Logger
}

// defaultLogSink returns a no-op sink so an engine created without an
// explicit logger never pays logging cost or panics on a nil pointer.
func defaultLogSink() *logSink {
	return &logSink{logger: zap.NewNop()}
}

func newLogSink(l *zap.Logger) *logSink {
	if l == nil {
		l = zap.NewNop()
	}
	return &logSink{logger: l}
}

func (s *logSink) debugf(msg string, fields ...zap.Field) {
	s.logger.Debug(msg, fields...)
}

func (s *logSink) warnf(msg string, fields ...zap.Field) {
	s.logger.Warn(msg, fields...)
}

func (s *logSink) errorf(msg string, fields ...zap.Field) {
	s.logger.Error(msg, fields...)
}
