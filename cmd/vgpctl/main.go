// Package main provides vgpctl, an operator CLI that answers compliance
// questions straight from the database the API uses.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/vgp-compliance-api/internal/repository"
	"github.com/noah-isme/vgp-compliance-api/internal/service"
	"github.com/noah-isme/vgp-compliance-api/pkg/config"
	"github.com/noah-isme/vgp-compliance-api/pkg/database"
	"github.com/noah-isme/vgp-compliance-api/pkg/datemath"
	"github.com/noah-isme/vgp-compliance-api/pkg/logger"
)

var version = "dev"

// errRentalBlocked reports a denied rental check; main exits with status 2.
var errRentalBlocked = errors.New("rental blocked by compliance gate")

// app holds the services shared by every subcommand.
type app struct {
	db         *sqlx.DB
	compliance *service.ComplianceService
	rentals    *service.RentalService
	reports    *service.ComplianceReportService
	logger     *zap.Logger
}

func main() {
	a := &app{}
	code := execute(context.Background(), newRootCmd(a))
	a.close()
	os.Exit(code)
}

// execute runs the command tree and maps its outcome to a process exit code.
func execute(ctx context.Context, root *cobra.Command) int {
	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errRentalBlocked):
		return 2
	default:
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return 1
	}
}

func newRootCmd(a *app) *cobra.Command {
	var today string

	root := &cobra.Command{
		Use:           "vgpctl",
		Short:         "Inspect VGP compliance from the command line",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context(), today)
		},
	}
	root.PersistentFlags().StringVar(&today, "today", "", "Evaluate as of this date (YYYY-MM-DD) instead of the current day")

	root.AddCommand(newClassifyCmd(a), newRentalCheckCmd(a), newReportCmd(a))
	return root
}

func (a *app) init(ctx context.Context, today string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("initialising logger: %w", err)
	}
	a.logger = logr

	clock, err := datemath.NewClock(cfg.VGP.TimeZone)
	if err != nil {
		return err
	}
	if today != "" {
		day, err := datemath.Parse(today)
		if err != nil {
			return fmt.Errorf("--today: %w", err)
		}
		// Noon in the canonical zone keeps the calendar date stable.
		loc := clock.Location()
		clock = datemath.NewFixedClock(time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, loc), loc)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	a.db = db

	scheduleRepo := repository.NewVGPScheduleRepository(db)
	inspectionRepo := repository.NewVGPInspectionRepository(db)
	assetRepo := repository.NewAssetRepository(db)

	a.compliance = service.NewComplianceService(scheduleRepo, inspectionRepo, clock, logr)
	a.rentals = service.NewRentalService(a.compliance, assetRepo, nil, logr)
	a.reports = service.NewComplianceReportService(service.ComplianceReportDeps{
		Inspections: inspectionRepo,
		Overdue:     scheduleRepo,
		Compliance:  a.compliance,
		Assets:      assetRepo,
	}, clock, nil, logr)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
