package tools

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"toolbelt-mcp/internal/gemini"
	"toolbelt-mcp/internal/github"
	"toolbelt-mcp/internal/mcp"
	"toolbelt-mcp/internal/secrets"
	"toolbelt-mcp/internal/tool"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testDeps wires handlers against in-memory secrets and clients pointed
// at the given base URLs. ".invalid" hosts guarantee any stray network
// call fails instead of escaping the test.
func testDeps(geminiURL, githubURL string) Deps {
	return Deps{
		Secrets:      secrets.NewMemoryStore(),
		Gemini:       gemini.New(geminiURL, "test-model", nil),
		Github:       github.New(githubURL, nil),
		Logger:       testLogger(),
		UploadBranch: "main",
		UploadDir:    "images",
	}
}

func run(t *testing.T, reg tool.Registration, args map[string]any) *mcp.ToolsCallResult {
	t.Helper()
	res, err := reg.Handler(context.Background(), args)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", reg.Tool.Name, err)
	}
	if res == nil {
		t.Fatalf("%s: nil result", reg.Tool.Name)
	}
	return res
}

func runErr(t *testing.T, reg tool.Registration, args map[string]any) error {
	t.Helper()
	_, err := reg.Handler(context.Background(), args)
	if err == nil {
		t.Fatalf("%s: expected error, got none", reg.Tool.Name)
	}
	return err
}

func TestRegistrationsCatalog(t *testing.T) {
	regs := Registrations(testDeps("http://gemini.invalid", "http://github.invalid"))

	want := []string{
		"currentTime",
		"formatJson",
		"convertBase",
		"convertUnit",
		"randomNumber",
		"randomString",
		"randomUuid",
		"generateImage",
		"setGithubToken",
		"setGithubRepo",
		"setGeminiKey",
	}
	if len(regs) != len(want) {
		t.Fatalf("catalog size = %d, want %d", len(regs), len(want))
	}
	for i, reg := range regs {
		if reg.Tool.Name != want[i] {
			t.Errorf("catalog[%d] = %q, want %q", i, reg.Tool.Name, want[i])
		}
		if reg.Handler == nil {
			t.Errorf("%s has no handler", reg.Tool.Name)
		}
		if reg.Tool.Description == "" {
			t.Errorf("%s has no description", reg.Tool.Name)
		}
		if typ, _ := reg.Tool.InputSchema["type"].(string); typ != "object" {
			t.Errorf("%s schema type = %q, want object", reg.Tool.Name, typ)
		}
	}
}

func TestRegisterAllKeepsCatalogOrder(t *testing.T) {
	deps := testDeps("http://gemini.invalid", "http://github.invalid")
	reg := tool.NewRegistry()
	RegisterAll(reg, deps)

	descs := reg.Descriptors()
	if len(descs) != len(Registrations(deps)) {
		t.Fatalf("registered %d tools, want %d", len(descs), len(Registrations(deps)))
	}
	if descs[0].Name != "currentTime" {
		t.Errorf("first tool = %q, want currentTime", descs[0].Name)
	}
	if descs[len(descs)-1].Name != "setGeminiKey" {
		t.Errorf("last tool = %q, want setGeminiKey", descs[len(descs)-1].Name)
	}
}
