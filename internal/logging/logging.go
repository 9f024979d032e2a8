// Package logging configures the logrus logger used by the setup binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Formatter renders one line per entry: time, colored level, optional
// [command] prefix, message and the remaining fields sorted by key.
type Formatter struct {
	TimestampFormat string
	DisableColors   bool
}

var levelStyles = map[logrus.Level]struct {
	text  string
	color *color.Color
}{
	logrus.PanicLevel: {"PANIC", color.New(color.FgRed, color.Bold)},
	logrus.FatalLevel: {"FATAL", color.New(color.FgRed, color.Bold)},
	logrus.ErrorLevel: {"ERROR", color.New(color.FgRed, color.Bold)},
	logrus.WarnLevel:  {"WARN", color.New(color.FgYellow, color.Bold)},
	logrus.InfoLevel:  {"INFO", color.New(color.FgCyan)},
	logrus.DebugLevel: {"DEBUG", color.New(color.FgWhite, color.Faint)},
	logrus.TraceLevel: {"TRACE", color.New(color.FgWhite, color.Faint)},
}

// Format implements logrus.Formatter
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	style, ok := levelStyles[entry.Level]
	if !ok {
		style = levelStyles[logrus.InfoLevel]
	}

	paint := func(c *color.Color, s string) string {
		if f.DisableColors {
			return s
		}
		return c.Sprint(s)
	}

	var b strings.Builder
	if f.TimestampFormat != "" {
		fmt.Fprintf(&b, "[%s] ", entry.Time.Format(f.TimestampFormat))
	}
	b.WriteString(paint(style.color, style.text))
	b.WriteString(": ")

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k == "command" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if command, ok := entry.Data["command"]; ok {
		fmt.Fprintf(&b, "[%s] ", paint(color.New(color.FgBlue), fmt.Sprint(command)))
	}
	b.WriteString(entry.Message)

	if len(keys) > 0 {
		fields := make([]string, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, fmt.Sprintf("%s=%v", k, entry.Data[k]))
		}
		b.WriteString(" ")
		b.WriteString(paint(color.New(color.FgWhite, color.Faint), "{"+strings.Join(fields, ", ")+"}"))
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// New creates a logger writing to out at the given level.
//
// An unknown level falls back to info. A nil out means stderr.
func New(level string, out io.Writer, noColor bool) *logrus.Logger {
	log := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if out == nil {
		out = os.Stderr
	}
	log.SetOutput(out)
	log.SetFormatter(&Formatter{
		TimestampFormat: "15:04:05",
		DisableColors:   noColor || color.NoColor,
	})
	return log
}
