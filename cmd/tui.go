package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reelpick/internal/pages"
	"github.com/desertthunder/reelpick/internal/shared"
	"github.com/desertthunder/reelpick/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal viewer.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	kind, err := pages.ParseKind(cmd.String("source"))
	if err != nil {
		return fmt.Errorf("%w: --source %q", shared.ErrInvalidFlag, cmd.String("source"))
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/reelpick-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	resolver, closer, err := r.openResolver(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	model := ui.NewModel(ctx, r.backend, kind, pages.Options{
		Resolver: resolver,
		Playback: r.config.Playback,
		Logger:   r.logger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
