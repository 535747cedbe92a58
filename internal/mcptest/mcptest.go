// Package mcptest drives an MCPServer through JSON-RPC messages in tests,
// without a transport.
package mcptest

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
)

// Harness wraps an MCPServer for in-process calls.
type Harness struct {
	tb     testing.TB
	server *mcpserver.MCPServer
	nextID atomic.Int64
}

// RPCError is a JSON-RPC error answer.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ToolResult is the decoded answer of tools/call.
type ToolResult struct {
	Text    string
	IsError bool
}

// ResourceContent is one entry of a resources/read answer.
type ResourceContent struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType"`
	Text     string `json:"text"`
}

// New initializes s and returns a harness around it.
func New(tb testing.TB, s *mcpserver.MCPServer) *Harness {
	tb.Helper()
	h := &Harness{tb: tb, server: s}
	h.mustCall("initialize", map[string]any{
		"protocolVersion": "2025-03-26",
		"clientInfo":      map[string]any{"name": "mcptest", "version": "0.0.0"},
		"capabilities":    map[string]any{},
	}, nil)
	return h
}

// Call sends method with params and decodes the result into out. A JSON-RPC
// error is returned instead of failing the test.
func (h *Harness) Call(method string, params any, out any) *RPCError {
	h.tb.Helper()

	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      h.nextID.Add(1),
		"method":  method,
		"params":  params,
	})
	require.NoError(h.tb, err)

	resp := h.server.HandleMessage(context.Background(), msg)
	raw, err := json.Marshal(resp)
	require.NoError(h.tb, err)

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	require.NoError(h.tb, json.Unmarshal(raw, &envelope))
	if envelope.Error != nil {
		return envelope.Error
	}
	if out != nil {
		require.NoError(h.tb, json.Unmarshal(envelope.Result, out))
	}
	return nil
}

func (h *Harness) mustCall(method string, params any, out any) {
	h.tb.Helper()
	if rpcErr := h.Call(method, params, out); rpcErr != nil {
		h.tb.Fatalf("%s: %d %s", method, rpcErr.Code, rpcErr.Message)
	}
}

// CallTool invokes a tool and joins its text content.
func (h *Harness) CallTool(name string, args map[string]any) ToolResult {
	h.tb.Helper()

	var res struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	h.mustCall("tools/call", map[string]any{"name": name, "arguments": args}, &res)

	out := ToolResult{IsError: res.IsError}
	for _, c := range res.Content {
		if c.Type == "text" {
			out.Text += c.Text
		}
	}
	return out
}

// ToolNames lists the registered tools.
func (h *Harness) ToolNames() []string {
	h.tb.Helper()

	var res struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	h.mustCall("tools/list", map[string]any{}, &res)

	names := make([]string, 0, len(res.Tools))
	for _, t := range res.Tools {
		names = append(names, t.Name)
	}
	return names
}

// ReadResource reads uri and returns its contents.
func (h *Harness) ReadResource(uri string) []ResourceContent {
	h.tb.Helper()

	var res struct {
		Contents []ResourceContent `json:"contents"`
	}
	h.mustCall("resources/read", map[string]any{"uri": uri}, &res)
	return res.Contents
}

// ResourceURIs lists static resource URIs and template URIs.
func (h *Harness) ResourceURIs() (resources, templates []string) {
	h.tb.Helper()

	var list struct {
		Resources []struct {
			URI string `json:"uri"`
		} `json:"resources"`
	}
	h.mustCall("resources/list", map[string]any{}, &list)
	for _, r := range list.Resources {
		resources = append(resources, r.URI)
	}

	var tmpl struct {
		ResourceTemplates []struct {
			URITemplate string `json:"uriTemplate"`
		} `json:"resourceTemplates"`
	}
	h.mustCall("resources/templates/list", map[string]any{}, &tmpl)
	for _, t := range tmpl.ResourceTemplates {
		templates = append(templates, t.URITemplate)
	}
	return resources, templates
}

// GetPrompt renders a prompt and joins the text of its messages.
func (h *Harness) GetPrompt(name string, args map[string]string) string {
	h.tb.Helper()

	var res struct {
		Messages []struct {
			Role    string `json:"role"`
			Content struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}
	h.mustCall("prompts/get", map[string]any{"name": name, "arguments": args}, &res)

	var text string
	for _, m := range res.Messages {
		text += m.Content.Text
	}
	return text
}

// PromptNames lists the registered prompts.
func (h *Harness) PromptNames() []string {
	h.tb.Helper()

	var res struct {
		Prompts []struct {
			Name string `json:"name"`
		} `json:"prompts"`
	}
	h.mustCall("prompts/list", map[string]any{}, &res)

	names := make([]string, 0, len(res.Prompts))
	for _, p := range res.Prompts {
		names = append(names, p.Name)
	}
	return names
}
