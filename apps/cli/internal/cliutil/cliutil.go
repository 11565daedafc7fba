// Package cliutil holds helpers shared by the CLI subcommands.
package cliutil

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/concoro/concoro-platform/domains/bandi/be/model"
	"github.com/concoro/concoro-platform/domains/bandi/be/repo"
	"github.com/concoro/concoro-platform/platform/go/logging"
	"github.com/concoro/concoro-platform/platform/go/requesttrace"
)

// LogLevelFlag is the persistent flag registered on the root command.
const LogLevelFlag = "log-level"

// Logger builds a stderr logger honouring --log-level.
func Logger(cmd *cobra.Command) (*zap.Logger, error) {
	level := "warn"
	if f := cmd.Flags().Lookup(LogLevelFlag); f != nil {
		level = f.Value.String()
	}
	return logging.NewLogger(logging.Config{
		Component: "concoro-cli",
		Level:     level,
		Output:    cmd.ErrOrStderr(),
	})
}

// SystemAudit tags CLI operations with a fresh request ID.
func SystemAudit() requesttrace.AuditInfo {
	return requesttrace.System(uuid.NewString())
}

// LoadExportFile reads and validates a JSON export of the concorsi collection.
func LoadExportFile(path string) ([]model.CompetitionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	records, err := repo.LoadExport(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return records, nil
}
