package session

import "go.uber.org/zap"

// LogNotifier writes notifications to the structured log. The gateway and
// CLI have no toast surface; the log line is the user-visible channel.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a zap-backed notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(message string) {
	n.logger.Info("notice", zap.String("message", message))
}

func (n *LogNotifier) Error(message string) {
	n.logger.Warn("notice", zap.String("message", message))
}
