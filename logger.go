package deepcall

// Logger is the diagnostic sink. *slog.Logger satisfies it as is.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (n *noopLogger) Debug(string, ...any) {}
func (n *noopLogger) Info(string, ...any)  {}
func (n *noopLogger) Warn(string, ...any)  {}
func (n *noopLogger) Error(string, ...any) {}
