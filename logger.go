package fetchgate

import "github.com/google/uuid"

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a tiny leveled logger. Adapters for logrus and zap live under
// log/.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// DebugConfig selects which coordinator events are logged at debug level.
// Failures are always logged at warn level when a logger is set.
type DebugConfig struct {
	Enabled      bool
	LogRequests  bool
	LogCache     bool
	LogLocks     bool
	RequestIDGen func() string
}

// DefaultDebugConfig returns a disabled config with every category selected.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      false,
		LogRequests:  true,
		LogCache:     true,
		LogLocks:     true,
		RequestIDGen: generateRequestID,
	}
}

func generateRequestID() string {
	return uuid.NewString()
}
