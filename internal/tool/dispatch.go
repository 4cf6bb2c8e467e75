package tool

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"toolbelt-mcp/internal/mcp"
)

// Engine resolves tool invocations against a registry and normalizes
// every outcome, including panics, into one result shape. No fault
// escapes Invoke.
type Engine struct {
	reg    *Registry
	logger *slog.Logger
}

// NewEngine builds a dispatch engine. A nil logger falls back to
// slog.Default().
func NewEngine(reg *Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{reg: reg, logger: logger}
}

// Invoke runs the named tool with the given argument bag and always
// returns a well-formed result. Unknown names, validation failures,
// handler errors, and handler panics all surface as IsError results.
func (e *Engine) Invoke(ctx context.Context, name string, args map[string]any) *mcp.ToolsCallResult {
	start := time.Now()

	reg, ok := e.reg.Resolve(name)
	if !ok {
		e.observe(name, start, false, CodeUnknownTool)
		return mcp.NewErrorResult(fmt.Sprintf("unknown tool: %s", name))
	}

	if args == nil {
		args = map[string]any{}
	}
	if err := ValidateArgs(reg.Tool.InputSchema, args); err != nil {
		e.observe(name, start, false, CodeOf(err))
		return mcp.NewErrorResult(err.Error())
	}

	result, err := e.safeInvoke(ctx, reg.Handler, args)
	switch {
	case err != nil:
		e.logger.Debug("tool failed", "tool", name, "error", err)
		e.observe(name, start, false, CodeOf(err))
		return mcp.NewErrorResult(err.Error())
	case result == nil:
		e.observe(name, start, false, CodeInternal)
		return mcp.NewErrorResult(fmt.Sprintf("tool %s returned no result", name))
	case result.IsError:
		e.observe(name, start, false, CodeInternal)
		return result
	default:
		e.observe(name, start, true, "")
		return result
	}
}

// safeInvoke calls the handler with recovery armed so a panicking tool
// degrades to an error return.
func (e *Engine) safeInvoke(ctx context.Context, h Handler, args map[string]any) (result *mcp.ToolsCallResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool panicked", "panic", r)
			result = nil
			err = Errorf(CodeInternal, "tool panicked: %v", r)
		}
	}()
	return h(ctx, args)
}

func (e *Engine) observe(name string, start time.Time, success bool, code string) {
	emitInvokeObservation(InvokeObservation{
		Tool:      name,
		Duration:  time.Since(start),
		Success:   success,
		ErrorCode: code,
	})
}
