// Package prompts provides the MCP prompts that turn the current Todoist
// state into planning and review conversations.
//
// Prompt bodies live in templates/ and are rendered with text/template. A
// failed backend call does not fail the prompt: the prompt text becomes
// "Error generating <name> prompt: <error>" so the model sees what happened.
package prompts

import (
	"bytes"
	"context"
	"embed"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/teemow/todoist-mcp/internal/instrumentation"
	"github.com/teemow/todoist-mcp/internal/logging"
	"github.com/teemow/todoist-mcp/internal/render"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{
			"marker": render.PriorityMarker,
			"due":    dueSuffix,
		}).
		ParseFS(templateFS, "templates/*.tmpl"),
)

// dueSuffix renders " (Due: <due>)" or nothing.
func dueSuffix(t todoist.Task) string {
	if due, ok := render.DueText(t); ok {
		return " (Due: " + due + ")"
	}
	return ""
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", errors.Wrapf(err, "render %s", name)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// renderFunc builds the prompt text. Errors are reported inside the prompt.
type renderFunc func(ctx context.Context, sc *server.ServerContext, args map[string]string) (string, error)

// Prompt couples an MCP prompt definition with its renderer.
type Prompt struct {
	definition mcp.Prompt
	// label names the prompt in error text, e.g. "daily planning".
	label  string
	render renderFunc
}

// Definition returns the MCP prompt definition for registration.
func (p Prompt) Definition() mcp.Prompt {
	return p.definition
}

// All returns every prompt in registration order.
func All() []Prompt {
	return []Prompt{
		dailyPlanningPrompt(),
		taskBreakdownPrompt(),
		weeklyReviewPrompt(),
		projectPlanningPrompt(),
		projectReviewPrompt(),
		projectCompletionPrompt(),
	}
}

// RegisterPrompts registers all prompts with the MCP server.
func RegisterPrompts(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	for _, p := range All() {
		s.AddPrompt(p.definition, p.handler(sc))
	}
	return nil
}

func (p Prompt) handler(sc *server.ServerContext) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		name := p.definition.Name
		ctx, span := instrumentation.StartPromptSpan(ctx, name)
		defer span.End()

		for _, arg := range p.definition.Arguments {
			if arg.Required && strings.TrimSpace(req.Params.Arguments[arg.Name]) == "" {
				err := errors.Newf("missing required argument %q", arg.Name)
				instrumentation.SetSpanError(span, err)
				sc.Metrics().RecordPromptRender(ctx, name, instrumentation.StatusError)
				return nil, err
			}
		}

		text, err := p.render(ctx, sc, req.Params.Arguments)
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			text = "Error generating " + p.label + " prompt: " + err.Error()
			instrumentation.SetSpanError(span, err)
			sc.Logger().Warn("prompt generation failed", logging.Prompt(name), logging.Err(err))
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		sc.Metrics().RecordPromptRender(ctx, name, status)

		return mcp.NewGetPromptResult(
			p.definition.Description,
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
			},
		), nil
	}
}

// snapshot fetches active tasks and projects in parallel.
func snapshot(ctx context.Context, sc *server.ServerContext) ([]todoist.Task, []todoist.Project, error) {
	client, err := sc.TodoistClient()
	if err != nil {
		return nil, nil, err
	}

	var (
		tasks    []todoist.Task
		projects []todoist.Project
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = client.ListTasks(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = client.ListProjects(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tasks, projects, nil
}
