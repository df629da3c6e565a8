// Package builtin publishes a few small components that are always
// available to the deepcall CLI.
package builtin

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shuldan/deepcall"
)

var ErrDivisionByZero = errors.New("division by zero")

type Module struct {
	now func() time.Time
}

func New() *Module {
	return &Module{now: time.Now}
}

func (m *Module) Name() string                { return "builtin" }
func (m *Module) Init(context.Context) error  { return nil }
func (m *Module) Start(context.Context) error { return nil }
func (m *Module) Stop(context.Context) error  { return nil }

func (m *Module) Components() []deepcall.Component {
	return []deepcall.Component{
		{ID: "math", Methods: mathMethods()},
		{ID: "clock", Methods: m.clockMethods()},
		{ID: "echo", Methods: deepcall.Methods{
			"say": deepcall.Func(func(parts ...string) string {
				return strings.Join(parts, " ")
			}),
		}},
	}
}

func mathMethods() deepcall.Methods {
	return deepcall.Methods{
		"add": deepcall.Func(func(a, b float64) float64 { return a + b }),
		"sub": deepcall.Func(func(a, b float64) float64 { return a - b }),
		"mul": deepcall.Func(func(a, b float64) float64 { return a * b }),
		"div": deepcall.Func(func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, ErrDivisionByZero
			}
			return a / b, nil
		}),
	}
}

func (m *Module) clockMethods() deepcall.Methods {
	return deepcall.Methods{
		"now": deepcall.Func(func() string {
			return m.now().UTC().Format(time.RFC3339)
		}),
		// after resolves with the current time once d has elapsed.
		"after": deepcall.Func(func(ctx context.Context, d time.Duration) *deepcall.Future {
			return deepcall.Async(ctx, func(ctx context.Context) (any, error) {
				timer := time.NewTimer(d)
				defer timer.Stop()
				select {
				case <-timer.C:
					return m.now().UTC().Format(time.RFC3339), nil
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			})
		}),
	}
}
