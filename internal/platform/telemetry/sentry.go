package telemetry

import (
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"movieflix/internal/platform/config"
)

const defaultSentryEnvironment = "production"

// InitSentry initializes Sentry for the named binary and reports whether it is enabled.
// Events are tagged with the binary so API and tooling errors can be told apart.
func InitSentry(cfg config.SentryConfig, component string) (bool, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return false, nil
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = defaultSentryEnvironment
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          strings.TrimSpace(cfg.Release),
		AttachStacktrace: true,
	}); err != nil {
		return false, fmt.Errorf("init sentry: %w", err)
	}
	if component = strings.TrimSpace(component); component != "" {
		sentry.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag("component", component)
		})
	}
	return true, nil
}

// Flush waits for buffered events to be delivered.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}

// Recover captures a panic and reports it to Sentry.
func Recover() {
	sentry.Recover()
}
