package deepcall

import (
	"context"
	"time"
)

type appNameKeyType struct{}
type appVersionKeyType struct{}
type appEnvironmentKeyType struct{}
type appStartTimeKeyType struct{}
type registryKeyType struct{}

var (
	contextKeyAppName        = appNameKeyType{}
	contextKeyAppVersion     = appVersionKeyType{}
	contextKeyAppEnvironment = appEnvironmentKeyType{}
	contextKeyAppStartTime   = appStartTimeKeyType{}
	contextKeyRegistry       = registryKeyType{}
)

type meta struct {
	name        string
	version     string
	environment string
	startTime   time.Time
	stopTime    time.Time
}

func (m *meta) enrichContext(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, contextKeyAppName, m.name)
	ctx = context.WithValue(ctx, contextKeyAppVersion, m.version)
	ctx = context.WithValue(ctx, contextKeyAppEnvironment, m.environment)
	ctx = context.WithValue(ctx, contextKeyAppStartTime, m.startTime)
	return ctx
}

func (m *meta) uptime() time.Duration {
	if m.startTime.IsZero() {
		return 0
	}
	end := m.stopTime
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(m.startTime)
}

func NameFromContext(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyAppName).(string)
	return v
}

func VersionFromContext(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyAppVersion).(string)
	return v
}

func EnvironmentFromContext(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyAppEnvironment).(string)
	return v
}

func StartTimeFromContext(ctx context.Context) time.Time {
	v, _ := ctx.Value(contextKeyAppStartTime).(time.Time)
	return v
}

// ContextWithRegistry returns a copy of ctx carrying r. Application.Run does this
// for every module it drives.
func ContextWithRegistry(ctx context.Context, r *Registry) context.Context {
	return context.WithValue(ctx, contextKeyRegistry, r)
}

// RegistryFromContext returns the registry carried by ctx, or nil.
func RegistryFromContext(ctx context.Context) *Registry {
	r, _ := ctx.Value(contextKeyRegistry).(*Registry)
	return r
}
