package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/javajack/xlrule"
	"github.com/javajack/xlrule/internal/logging"
	"github.com/javajack/xlrule/ruleset"
)

const name = "xlcheck"

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     "Validate workbook cells against a YAML rule file",
		Version:   version,
		ArgsUsage: "<workbook.xlsx>",
		Description: `Check spreadsheet cells against declarative rules.

Each check names a cell or range, the type its values parse to, and an
ordered list of rules. Rules for one cell stop at the first failure; every
failing cell is reported.

# Examples

Validate an order sheet:
  xlcheck --rules orders.yaml orders.xlsx

Emit JSON and fail the build on errors:
  xlcheck -r orders.yaml -f json --fail-on-error orders.xlsx`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "rules",
				Aliases:  []string{"r"},
				Required: true,
				Usage:    "Path to the YAML rule file",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   string(formatText),
				Usage:   "Report format: text, json or yaml",
				Sources: cli.EnvVars("XLCHECK_FORMAT"),
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "Password for an encrypted workbook",
			},
			&cli.BoolFlag{
				Name:  "fail-on-error",
				Usage: "Exit with non-zero status if any error-severity issue is found",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("XLCHECK_LOG_LEVEL"),
			},
		},
		// Exit codes are decided in main so Run always returns the error.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.SetDefault(os.Stderr, logging.FormatText, name, version, cmd.String("log-level"))

			format, err := parseFormat(cmd.String("format"))
			if err != nil {
				return err
			}
			if cmd.NArg() != 1 {
				return fmt.Errorf("expected exactly one workbook argument, got %d", cmd.NArg())
			}
			workbookPath := cmd.Args().First()
			rulesPath := cmd.String("rules")

			slog.Info("loading rules", "path", rulesPath)
			rs, err := ruleset.Load(rulesPath)
			if err != nil {
				return err
			}

			slog.Info("opening workbook", "path", workbookPath)
			wb, err := xlrule.Open(workbookPath,
				xlrule.WithPassword(cmd.String("password")),
				xlrule.WithLogger(slog.Default()))
			if err != nil {
				return err
			}
			defer func() {
				if err := wb.Close(); err != nil {
					slog.Warn("failed to close workbook", "error", err)
				}
			}()

			report, err := rs.Validate(ctx, wb)
			if err != nil {
				return fmt.Errorf("validate %q: %w", workbookPath, err)
			}

			if err := writeReport(out, format, report); err != nil {
				return fmt.Errorf("write report: %w", err)
			}

			if cmd.Bool("fail-on-error") && report.HasErrors() {
				return cli.Exit(fmt.Sprintf("validation failed: %d error(s)", report.Errors), 2)
			}
			return nil
		},
	}
}
