package server

import (
	_ "embed"
	"html/template"
	"net/http"
	"sort"

	"toolbelt-mcp/internal/mcp"
)

//go:embed docs.html.tmpl
var docsTemplateText string

var docsTemplate = template.Must(template.New("docs").Parse(docsTemplateText))

type docsPage struct {
	Version string
	Tools   []docsTool
}

type docsTool struct {
	Name        string
	Description string
	Params      []docsParam
}

type docsParam struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// handleDocs renders the live catalog as a human-readable page. The
// page reflects whatever is registered, not a static list.
func (s *Server) handleDocs(w http.ResponseWriter, _ *http.Request) {
	page := docsPage{Version: s.cfg.Version}
	for _, desc := range s.registry.Descriptors() {
		page.Tools = append(page.Tools, docsToolOf(desc))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := docsTemplate.Execute(w, page); err != nil {
		s.logger.Error("render docs page", "error", err)
	}
}

func docsToolOf(desc mcp.Tool) docsTool {
	out := docsTool{Name: desc.Name, Description: desc.Description}

	props, _ := desc.InputSchema["properties"].(map[string]any)
	required := requiredNames(desc.InputSchema["required"])

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop, _ := props[name].(map[string]any)
		typ, _ := prop["type"].(string)
		text, _ := prop["description"].(string)
		out.Params = append(out.Params, docsParam{
			Name:        name,
			Type:        typ,
			Required:    required[name],
			Description: text,
		})
	}
	return out
}

// requiredNames reads the schema's required list, which is []string in
// hand-built schemas and []any after a JSON round trip.
func requiredNames(v any) map[string]bool {
	out := make(map[string]bool)
	switch t := v.(type) {
	case []string:
		for _, name := range t {
			out[name] = true
		}
	case []any:
		for _, item := range t {
			if name, ok := item.(string); ok {
				out[name] = true
			}
		}
	}
	return out
}
