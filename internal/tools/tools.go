// Package tools implements the builtin tool catalog: utility
// computations, secret administration, and the image generation
// workflow.
package tools

import (
	"log/slog"
	"time"

	"toolbelt-mcp/internal/gemini"
	"toolbelt-mcp/internal/github"
	"toolbelt-mcp/internal/secrets"
	"toolbelt-mcp/internal/tool"
)

// Deps carries the shared collaborators handlers need. Handlers share
// no mutable state with each other beyond the secret store.
type Deps struct {
	Secrets secrets.Store
	Gemini  *gemini.Client
	Github  *github.Client
	Logger  *slog.Logger

	UploadBranch string
	UploadDir    string

	// Now is the clock used by time-dependent tools; nil means
	// time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Registrations returns the full builtin catalog in its canonical
// registration order.
func Registrations(deps Deps) []tool.Registration {
	return []tool.Registration{
		currentTimeTool(deps),
		formatJSONTool(),
		convertBaseTool(),
		convertUnitTool(),
		randomNumberTool(),
		randomStringTool(),
		randomUUIDTool(),
		generateImageTool(deps),
		setGithubTokenTool(deps),
		setGithubRepoTool(deps),
		setGeminiKeyTool(deps),
	}
}

// RegisterAll registers the builtin catalog on the given registry.
func RegisterAll(reg *tool.Registry, deps Deps) {
	reg.RegisterAll(Registrations(deps))
}
