package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/todoist-mcp/internal/todoist"
)

func newCheckCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the Todoist API token",
		Long: `Verify that TODOIST_API_TOKEN is accepted by the Todoist API.
Lists projects and active tasks once and prints how many were found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("api-base-url") {
				if v := os.Getenv("TODOIST_API_BASE_URL"); v != "" {
					baseURL = v
				}
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), todoist.Config{
				Token:   os.Getenv("TODOIST_API_TOKEN"),
				BaseURL: baseURL,
				Timeout: timeout,
			})
		},
	}

	cmd.Flags().StringVar(&baseURL, "api-base-url", todoist.DefaultBaseURL, "Todoist REST API base URL. Can also use TODOIST_API_BASE_URL env var.")
	cmd.Flags().DurationVar(&timeout, "request-timeout", todoist.DefaultTimeout, "Timeout for each Todoist API request")

	return cmd
}

func runCheck(ctx context.Context, out io.Writer, cfg todoist.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Token == "" {
		return fmt.Errorf("TODOIST_API_TOKEN is not set")
	}

	client, err := todoist.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create Todoist client: %w", err)
	}

	projects, err := client.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	tasks, err := client.ListTasks(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	fmt.Fprintf(out, "Connected to %s\n", client.BaseURL())
	fmt.Fprintf(out, "Projects: %d\n", len(projects))
	fmt.Fprintf(out, "Active tasks: %d\n", len(tasks))
	return nil
}
