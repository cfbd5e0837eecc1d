package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"

	"github.com/Yishiba/animeko/pkg/client"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()

	greenCheck = green("✓")
	redCross   = red("✗")
)

// BeQuietError signals that the error was already reported to the user.
type BeQuietError struct{}

func (BeQuietError) Error() string {
	return "command failed"
}

func logSuccess(format string, args ...any) {
	log.Info().Msgf("%s %s", greenCheck, fmt.Sprintf(format, args...))
}

// logError reports err with the server correlation id and returns a BeQuietError.
func logError(err error, correlation, msg string) error {
	evt := log.Error().Err(err)
	if correlation != "" {
		evt = evt.Str("correlation_id", correlation)
	}
	var apiErr client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Kind != "" {
			evt = evt.Str("kind", string(apiErr.Kind))
		}
		if apiErr.Retryable {
			evt = evt.Bool("retryable", true)
		}
	}
	evt.Msgf("%s %s", redCross, msg)
	return BeQuietError{}
}

// readArg returns arg, or stdin if arg is "-".
func readArg(arg string) (string, error) {
	if arg != "-" {
		return strings.TrimSpace(arg), nil
	}
	log.Debug().Msg("Reading from stdin")
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func humanUntil(t time.Time) string {
	d := time.Until(t).Round(time.Second)
	if d <= 0 {
		return red("expired " + (-d).String() + " ago")
	}
	return faint("in " + d.String())
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
