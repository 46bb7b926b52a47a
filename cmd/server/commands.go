package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/umtracker/umtracker-api/internal/config"
	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/platform/logger"
	"github.com/umtracker/umtracker-api/internal/service"
	"github.com/umtracker/umtracker-api/internal/service/auth"
)

// withApplication loads configuration, wires the application and runs fn.
// Commands log as text to stderr so stdout stays clean for output.
func withApplication(ctx context.Context, fn func(ctx context.Context, app *application) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	serverCfg := cfg.Server
	serverCfg.LogFormat = "text"
	log := logger.Setup(serverCfg, config.OTelConfig{ServiceName: cfg.OTel.ServiceName})

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.cleanup()
	return fn(logger.WithLogger(ctx, log), app)
}

func tokenCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access and refresh token for an existing curator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				curator, err := app.curatorStore.GetByEmail(ctx, email)
				if err != nil {
					return fmt.Errorf("failed to load curator %q: %w", email, err)
				}
				access, err := app.jwtService.GenerateToken(ctx, curator.Email)
				if err != nil {
					return fmt.Errorf("failed to generate access token: %w", err)
				}
				refresh, err := app.jwtService.GenerateRefreshToken(ctx, curator.Email)
				if err != nil {
					return fmt.Errorf("failed to generate refresh token: %w", err)
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "access_token:  %s\nrefresh_token: %s\n", access, refresh)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "curator email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func cardsCmd() *cobra.Command {
	var (
		viewer string
		filter service.CardFilter
		scope  string
	)
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Print the task cards a curator sees on the dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter.Scope = domain.CardScope(scope)
			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				curator, err := app.curatorStore.GetByEmail(ctx, viewer)
				if err != nil {
					return fmt.Errorf("failed to load curator %q: %w", viewer, err)
				}
				cards, err := app.dashboardService.TaskCards(ctx, curator, filter)
				if err != nil {
					return err
				}
				logger.FromContext(ctx).Debug("cards loaded", slog.Int("count", len(cards)))
				renderCards(cmd.OutOrStdout(), cards)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&viewer, "viewer", "", "email of the curator viewing the dashboard")
	cmd.Flags().StringVar(&scope, "scope", string(domain.ScopeAll), "all, group or individual")
	cmd.Flags().Int64Var(&filter.SubjectID, "subject-id", 0, "only tasks of authors in this subject")
	cmd.Flags().Int64Var(&filter.DepartmentID, "department-id", 0, "only tasks of authors in this department")
	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "match task id, name or description")
	_ = cmd.MarkFlagRequired("viewer")
	return cmd
}

// renderCards writes cards as a table.
func renderCards(w io.Writer, cards []domain.TaskCard) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Title", "Status", "Done", "Total", "Progress", "On time", "Deadline", "Sample"})
	for _, c := range cards {
		tw.AppendRow(table.Row{
			c.ID,
			c.Title,
			c.Status,
			c.Completed,
			c.Total,
			fmt.Sprintf("%.0f%%", c.Progress),
			c.OnTime,
			c.Deadline.Format("2006-01-02"),
			strings.Join(c.SampleNames, ", "),
		})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d tasks", len(cards))})
	tw.Render()
}

func hashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for seeding curator passwords",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return errors.New("password must not be empty")
			}
			hash, err := auth.HashPassword(args[0], cost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
