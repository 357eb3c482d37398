package logging

import (
	"context"
	"fmt"
	"strings"
)

// PrintfLogger adapts a Logger to libraries that report through
// Printf/Fatalf, such as goose. Printf lines are logged at debug level.
type PrintfLogger struct {
	log Logger
}

func NewPrintfLogger(l Logger) *PrintfLogger {
	return &PrintfLogger{log: l}
}

func (p *PrintfLogger) Printf(format string, v ...any) {
	p.log.Debug(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs at error level. The caller decides whether to stop.
func (p *PrintfLogger) Fatalf(format string, v ...any) {
	p.log.Error(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
}
