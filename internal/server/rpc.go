package server

import (
	"context"
	"encoding/json"
	"fmt"

	"toolbelt-mcp/internal/mcp"
	"toolbelt-mcp/internal/session"
)

// route is the session manager's dispatch callback. Responses to
// notifications are dropped; everything else answers exactly once.
func (s *Server) route(ctx context.Context, sess *session.Session, req *mcp.Request) *mcp.Response {
	resp := s.dispatchMethod(ctx, sess, req)
	if req.IsNotification() {
		return nil
	}
	return resp
}

func (s *Server) dispatchMethod(ctx context.Context, sess *session.Session, req *mcp.Request) *mcp.Response {
	switch req.Method {
	case "initialize":
		var params mcp.InitializeParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return mcp.NewErrorResponse(req.ID, mcp.CodeInvalidParams, "malformed initialize params")
			}
		}
		s.logger.Info("client initialized",
			"session_id", sess.ID,
			"client", params.ClientInfo.Name,
			"client_version", params.ClientInfo.Version)
		return mcp.NewResponse(req.ID, mcp.InitializeResult{
			ProtocolVersion: mcp.ProtocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      mcp.ServerInfo{Name: "toolbelt-mcp", Version: s.cfg.Version},
		})

	case "notifications/initialized":
		return nil

	case "tools/list":
		return mcp.NewResponse(req.ID, mcp.ToolsListResult{Tools: s.registry.Descriptors()})

	case "tools/call":
		var params mcp.ToolsCallParams
		if len(req.Params) == 0 {
			return mcp.NewErrorResponse(req.ID, mcp.CodeInvalidParams, "missing tools/call params")
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return mcp.NewErrorResponse(req.ID, mcp.CodeInvalidParams, "malformed tools/call params")
		}
		result := s.engine.Invoke(ctx, params.Name, params.Arguments)
		return mcp.NewResponse(req.ID, result)

	case "ping":
		return mcp.NewResponse(req.ID, map[string]any{})

	default:
		return mcp.NewErrorResponse(req.ID, mcp.CodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}
