package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-rapor-api/internal/app"
	"github.com/noah-isme/sma-rapor-api/internal/dto"
	"github.com/noah-isme/sma-rapor-api/internal/models"
	"github.com/noah-isme/sma-rapor-api/pkg/config"
	"github.com/noah-isme/sma-rapor-api/pkg/logger"
)

// engine is the slice of the container the commands drive.
type engine interface {
	Generate(ctx context.Context, req dto.GenerateReportCardsRequest, actorID string) (*dto.GenerateReportCardsResponse, error)
	Lock(ctx context.Context, id string) (*dto.ToggleLockResponse, error)
	Unlock(ctx context.Context, id string) (*dto.ToggleLockResponse, error)
	BulkPromote(ctx context.Context, req dto.BulkPromoteRequest, actorID string) (*dto.PromotionResult, error)
	ActiveTerm(ctx context.Context) (*models.Term, error)
}

type containerEngine struct {
	c *app.Container
}

func (e containerEngine) Generate(ctx context.Context, req dto.GenerateReportCardsRequest, actorID string) (*dto.GenerateReportCardsResponse, error) {
	return e.c.ReportCards.Generate(ctx, req, actorID)
}

func (e containerEngine) Lock(ctx context.Context, id string) (*dto.ToggleLockResponse, error) {
	return e.c.ReportCards.Lock(ctx, id)
}

func (e containerEngine) Unlock(ctx context.Context, id string) (*dto.ToggleLockResponse, error) {
	return e.c.ReportCards.Unlock(ctx, id)
}

func (e containerEngine) BulkPromote(ctx context.Context, req dto.BulkPromoteRequest, actorID string) (*dto.PromotionResult, error) {
	return e.c.Promotions.BulkPromote(ctx, req, actorID)
}

func (e containerEngine) ActiveTerm(ctx context.Context) (*models.Term, error) {
	return e.c.Terms.GetActive(ctx)
}

// cli carries state shared by subcommands. When eng is preset (tests) no
// connections are opened.
type cli struct {
	eng     engine
	closers []func() error
	actor   string
}

// execute runs one invocation and releases whatever open acquired, whether or
// not the command failed. Cobra skips post-run hooks after a RunE error.
func execute(state *cli, args []string) error {
	root := newRootCmd(state)
	root.SetArgs(args)
	err := root.Execute()
	if closeErr := state.close(); err == nil {
		err = closeErr
	}
	return err
}

func newRootCmd(state *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "raporctl",
		Short:         "Operate the report card engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.open()
		},
	}
	root.PersistentFlags().StringVar(&state.actor, "actor", "", "user id recorded as the actor of writes")

	root.AddCommand(
		state.generateCmd(),
		state.lockCmd(true),
		state.lockCmd(false),
		state.bulkPromoteCmd(),
		state.activeTermCmd(),
	)
	return root
}

func (s *cli) open() error {
	if s.eng != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	container, err := app.New(cfg, logr)
	if err != nil {
		return err
	}
	s.eng = containerEngine{c: container}
	s.closers = append(s.closers, container.Close, func() error {
		_ = logr.Sync()
		return nil
	})
	logr.Debug("raporctl connected", zap.String("db", cfg.Database.Name))
	return nil
}

func (s *cli) close() error {
	var firstErr error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}

func (s *cli) generateCmd() *cobra.Command {
	var req dto.GenerateReportCardsRequest
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate report cards for a class group in a term",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := s.eng.Generate(cmd.Context(), req, s.actor)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&req.ClassGroupID, "class-group", "", "class group id")
	cmd.Flags().StringVar(&req.TermID, "term", "", "term id")
	_ = cmd.MarkFlagRequired("class-group")
	_ = cmd.MarkFlagRequired("term")
	return cmd
}

func (s *cli) lockCmd(lock bool) *cobra.Command {
	var id string
	use, short := "lock", "Lock a report card"
	if !lock {
		use, short = "unlock", "Unlock a report card"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			op := s.eng.Lock
			if !lock {
				op = s.eng.Unlock
			}
			result, err := op(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "report card id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (s *cli) bulkPromoteCmd() *cobra.Command {
	var (
		req    dto.BulkPromoteRequest
		target string
	)
	cmd := &cobra.Command{
		Use:   "bulk-promote",
		Short: "Apply one promotion decision to every unprocessed student of a class group",
		RunE: func(cmd *cobra.Command, args []string) error {
			if target != "" {
				req.TargetClassGroupID = &target
			}
			result, err := s.eng.BulkPromote(cmd.Context(), req, s.actor)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&req.ClassGroupID, "class-group", "", "class group id")
	cmd.Flags().StringVar(&req.Status, "status", "", "promoted, retained, graduated or transferred")
	cmd.Flags().StringVar(&target, "target", "", "target class group id (promoted and retained)")
	_ = cmd.MarkFlagRequired("class-group")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func (s *cli) activeTermCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "active-term",
		Short: "Print the term operations should target",
		RunE: func(cmd *cobra.Command, args []string) error {
			term, err := s.eng.ActiveTerm(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), term)
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
