package logging

import (
	"fmt"
	"strings"
)

type gooseLogger struct {
	log *Logger
}

// GooseLogger wraps the logger for use by the goose migration tool.
func (log *Logger) GooseLogger() *gooseLogger {
	return &gooseLogger{log: log}
}

func (g *gooseLogger) Fatal(v ...interface{}) {
	g.log.Fatal(strings.TrimSpace(fmt.Sprint(v...)))
}

func (g *gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Sugar().Fatalf(strings.TrimSpace(format), v...)
}

func (g *gooseLogger) Print(v ...interface{}) {
	g.log.Info(strings.TrimSpace(fmt.Sprint(v...)))
}

func (g *gooseLogger) Println(v ...interface{}) {
	g.log.Info(strings.TrimSpace(fmt.Sprintln(v...)))
}

func (g *gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Sugar().Infof(strings.TrimSpace(format), v...)
}
