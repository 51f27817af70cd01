package modules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// DefaultScriptTimeout bounds one script render when timeout_ms is unset.
const DefaultScriptTimeout = 100 * time.Millisecond

// ErrScriptTimeout is returned when a script render is interrupted.
var ErrScriptTimeout = errors.New("script interrupted")

// Script renders HTML returned by a JavaScript render(args) function.
// Each render runs in a fresh runtime; the source is compiled once.
type Script struct {
	Settings
	program *goja.Program
	timeout time.Duration
	data    map[string]any
}

// NewScript builds a Script from args: position and source are required;
// timeout_ms is optional. source must define a global function render.
func NewScript(args map[string]any, defaults Defaults) (*Script, error) {
	settings, err := parseSettings(args, defaults)
	if err != nil {
		return nil, err
	}
	src, err := getString(args, "source", true)
	if err != nil {
		return nil, err
	}
	ms, err := getInt(args, "timeout_ms", int(DefaultScriptTimeout/time.Millisecond))
	if err != nil {
		return nil, err
	}
	if ms <= 0 {
		return nil, fmt.Errorf("timeout_ms must be positive, got %d", ms)
	}

	program, err := goja.Compile(settings.position, src, true)
	if err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &Script{
		Settings: settings,
		program:  program,
		timeout:  time.Duration(ms) * time.Millisecond,
		data:     args,
	}, nil
}

func (s *Script) Render(ctx context.Context, args any) (out string, err error) {
	data := any(s.data)
	if args != nil {
		data = args
	}

	vm := goja.New()
	sandbox(vm)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, func() { vm.Interrupt(ctx.Err()) })
	defer stop()

	if _, err := vm.RunProgram(s.program); err != nil {
		return "", scriptError(err)
	}
	render, ok := goja.AssertFunction(vm.Get("render"))
	if !ok {
		return "", fmt.Errorf("script does not define a render function")
	}

	val, err := render(goja.Undefined(), vm.ToValue(data))
	if err != nil {
		return "", scriptError(err)
	}
	html, ok := val.Export().(string)
	if !ok {
		return "", fmt.Errorf("render must return a string, got %s", val.String())
	}
	return html, nil
}

// sandbox removes host access globals.
func sandbox(vm *goja.Runtime) {
	for _, name := range []string{"require", "process", "module", "exports"} {
		_ = vm.Set(name, goja.Undefined())
	}
}

func scriptError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Errorf("%w: %v", ErrScriptTimeout, interrupted.Value())
	}
	return fmt.Errorf("script failed: %w", err)
}
