package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/todoist-mcp/internal/prompts"
	"github.com/teemow/todoist-mcp/internal/resources"
	"github.com/teemow/todoist-mcp/internal/server"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools, resources
and prompts. This command introspects the registered definitions so the
documentation always matches the running server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(cmd.Context(), outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(ctx context.Context, outputFile string) error {
	if outputFile == "" {
		return generateDocs(ctx, os.Stdout)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := generateDocs(ctx, f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	return nil
}

// generateDocs writes the reference for a server with every tool registered.
func generateDocs(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// No token is needed to introspect definitions.
	serverContext, err := server.NewServerContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := newMCPServer()
	if err := registerAll(mcpSrv, serverContext, false); err != nil {
		return err
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}

	promptDefs := make([]mcp.Prompt, 0)
	for _, p := range prompts.All() {
		promptDefs = append(promptDefs, p.Definition())
	}

	_, err = io.WriteString(w, generateMarkdown(tools, promptDefs))
	return err
}

func generateMarkdown(tools []mcp.Tool, promptDefs []mcp.Prompt) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# MCP Reference\n\n")
	sb.WriteString("This document lists the tools, resources and prompts available when running todoist-mcp as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the definitions.\n\n")

	toolsByCategory := groupToolsByCategory(tools)

	categories := make([]string, 0, len(toolsByCategory))
	for category := range toolsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	// Table of contents
	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categories {
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", category, anchor(category)))
	}
	sb.WriteString("- [Resources](#resources)\n")
	sb.WriteString("- [Prompts](#prompts)\n\n")

	sb.WriteString("## Read-Only Mode\n\n")
	sb.WriteString("With `--read-only`, only tools that do not change data are registered: ")
	sb.WriteString("`setup_todoist`, `get_tasks`, `get_task`, `get_projects` and `get_project`.\n\n")

	for _, category := range categories {
		categoryTools := toolsByCategory[category]
		sort.Slice(categoryTools, func(i, j int) bool {
			return categoryTools[i].Name < categoryTools[j].Name
		})

		sb.WriteString(fmt.Sprintf("## %s\n\n", category))
		for _, tool := range categoryTools {
			sb.WriteString(generateToolMarkdown(tool))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("## Resources\n\n")
	sb.WriteString("All resources are served as `text/plain`.\n\n")
	sb.WriteString(fmt.Sprintf("- `%s`: all active tasks\n", resources.TasksURI))
	sb.WriteString(fmt.Sprintf("- `%s`: all projects\n", resources.ProjectsURI))
	sb.WriteString(fmt.Sprintf("- `%s` (template): active tasks of one project\n\n", resources.ProjectTasksURI))

	sb.WriteString("## Prompts\n\n")
	for _, p := range promptDefs {
		sb.WriteString(generatePromptMarkdown(p))
		sb.WriteString("\n")
	}

	return sb.String()
}

func anchor(heading string) string {
	return strings.ToLower(strings.ReplaceAll(heading, " ", "-"))
}

func groupToolsByCategory(tools []mcp.Tool) map[string][]mcp.Tool {
	categories := make(map[string][]mcp.Tool)

	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		categories[category] = append(categories[category], tool)
	}

	return categories
}

func getCategoryFromToolName(name string) string {
	switch {
	case name == "setup_todoist":
		return "Setup Tools"
	case strings.HasSuffix(name, "_task"), strings.HasSuffix(name, "_tasks"):
		return "Task Tools"
	case strings.HasSuffix(name, "_project"), strings.HasSuffix(name, "_projects"):
		return "Project Tools"
	default:
		return "Other"
	}
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))

	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		// Sort properties for consistent output
		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			propMap, ok := tool.InputSchema.Properties[name].(map[string]any)
			if !ok {
				continue
			}

			requiredStr := "optional"
			if slices.Contains(tool.InputSchema.Required, name) {
				requiredStr = "required"
			}

			sb.WriteString(fmt.Sprintf("- `%s` (%s, %s): ", name, getPropertyType(propMap), requiredStr))
			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func generatePromptMarkdown(p mcp.Prompt) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", p.Name))
	if p.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", p.Description))
	}
	if len(p.Arguments) > 0 {
		sb.WriteString("**Arguments:**\n")
		for _, arg := range p.Arguments {
			requiredStr := "optional"
			if arg.Required {
				requiredStr = "required"
			}
			sb.WriteString(fmt.Sprintf("- `%s` (%s): %s\n", arg.Name, requiredStr, arg.Description))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func getPropertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}
