package tool

import (
	"context"
	"errors"
	"strings"
	"testing"

	"toolbelt-mcp/internal/mcp"
)

type captureObserver struct {
	observations []InvokeObservation
}

func (c *captureObserver) ObserveInvoke(obs InvokeObservation) {
	c.observations = append(c.observations, obs)
}

func newTestEngine(regs ...Registration) *Engine {
	r := NewRegistry()
	r.RegisterAll(regs)
	return NewEngine(r, nil)
}

func TestInvokeUnknownTool(t *testing.T) {
	e := newTestEngine()
	res := e.Invoke(context.Background(), "__nonexistent__", nil)
	if !res.IsError {
		t.Fatal("unknown tool should produce an error result")
	}
	if !strings.Contains(res.Text(), "__nonexistent__") {
		t.Fatalf("error text %q should mention the unknown name", res.Text())
	}
}

func TestInvokeSuccess(t *testing.T) {
	e := newTestEngine(namedReg("echo", "hello"))
	res := e.Invoke(context.Background(), "echo", map[string]any{})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Text())
	}
	if res.Text() == "" {
		t.Fatal("success result should carry content")
	}
}

func TestInvokeHandlerError(t *testing.T) {
	e := newTestEngine(Registration{
		Tool: mcp.Tool{Name: "fail"},
		Handler: func(context.Context, map[string]any) (*mcp.ToolsCallResult, error) {
			return nil, NewError(CodeMissingConfiguration, "gemini api key is not set")
		},
	})
	res := e.Invoke(context.Background(), "fail", nil)
	if !res.IsError {
		t.Fatal("handler error should produce an error result")
	}
	if !strings.Contains(res.Text(), CodeMissingConfiguration) {
		t.Fatalf("error text %q should carry the code", res.Text())
	}
}

func TestInvokeContainsPanic(t *testing.T) {
	e := newTestEngine(Registration{
		Tool: mcp.Tool{Name: "explode"},
		Handler: func(context.Context, map[string]any) (*mcp.ToolsCallResult, error) {
			panic("kaboom")
		},
	})
	res := e.Invoke(context.Background(), "explode", nil)
	if !res.IsError {
		t.Fatal("panic should normalize to an error result")
	}
	if !strings.Contains(res.Text(), "kaboom") {
		t.Fatalf("error text %q should carry the panic value", res.Text())
	}
}

func TestInvokeNilResult(t *testing.T) {
	e := newTestEngine(Registration{
		Tool: mcp.Tool{Name: "void"},
		Handler: func(context.Context, map[string]any) (*mcp.ToolsCallResult, error) {
			return nil, nil
		},
	})
	res := e.Invoke(context.Background(), "void", nil)
	if !res.IsError {
		t.Fatal("nil result should normalize to an error result")
	}
}

func TestInvokeValidatesSchema(t *testing.T) {
	e := newTestEngine(Registration{
		Tool: mcp.Tool{
			Name: "typed",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"count": map[string]any{"type": "integer"},
				},
				"required": []string{"count"},
			},
		},
		Handler: textHandler("ok"),
	})

	res := e.Invoke(context.Background(), "typed", map[string]any{})
	if !res.IsError || !strings.Contains(res.Text(), "count") {
		t.Fatalf("missing required arg should fail validation, got %q", res.Text())
	}

	res = e.Invoke(context.Background(), "typed", map[string]any{"count": "three"})
	if !res.IsError || !strings.Contains(res.Text(), CodeValidation) {
		t.Fatalf("type mismatch should fail validation, got %q", res.Text())
	}

	res = e.Invoke(context.Background(), "typed", map[string]any{"count": float64(3)})
	if res.IsError {
		t.Fatalf("valid args rejected: %s", res.Text())
	}
}

func TestInvokeEmitsObservations(t *testing.T) {
	obs := &captureObserver{}
	SetObserver(obs)
	t.Cleanup(func() { SetObserver(nil) })

	e := newTestEngine(namedReg("echo", "hello"))
	e.Invoke(context.Background(), "echo", nil)
	e.Invoke(context.Background(), "missing", nil)

	if len(obs.observations) != 2 {
		t.Fatalf("got %d observations, want 2", len(obs.observations))
	}
	if !obs.observations[0].Success || obs.observations[0].Tool != "echo" {
		t.Fatalf("first observation wrong: %+v", obs.observations[0])
	}
	if obs.observations[1].Success || obs.observations[1].ErrorCode != CodeUnknownTool {
		t.Fatalf("second observation wrong: %+v", obs.observations[1])
	}
}

func TestToolErrorFormatting(t *testing.T) {
	err := UpstreamError("github", 422, `{"message":"Invalid request"}`)
	if err.Status != 422 {
		t.Fatalf("status = %d, want 422", err.Status)
	}
	if !strings.Contains(err.Error(), "422") || !strings.Contains(err.Error(), CodeUpstreamHTTP) {
		t.Fatalf("unexpected message: %s", err.Error())
	}

	cause := errors.New("connection refused")
	wrapped := WrapError(CodeExtraction, "", cause)
	if wrapped.Message != cause.Error() {
		t.Fatalf("empty message should adopt cause, got %q", wrapped.Message)
	}
	if !errors.Is(wrapped, cause) {
		t.Fatal("wrapped cause should satisfy errors.Is")
	}

	if CodeOf(wrapped) != CodeExtraction {
		t.Fatalf("CodeOf = %q, want %q", CodeOf(wrapped), CodeExtraction)
	}
	if CodeOf(errors.New("plain")) != CodeInternal {
		t.Fatalf("plain errors should classify as %s", CodeInternal)
	}
}
