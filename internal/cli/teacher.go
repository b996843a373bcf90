package cli

import (
	"context"
	"fmt"
	"io"

	"tietotesti/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewTeacherCmd groups teacher account administration.
func NewTeacherCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teacher",
		Short: "Manage teacher accounts",
	}
	cmd.AddCommand(newTeacherAddCmd(configPath))
	return cmd
}

func newTeacherAddCmd(configPath *string) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a teacher account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return addTeacher(cmd.Context(), cfg, log, cmd.OutOrStdout(), username, password)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func addTeacher(ctx context.Context, cfg config.Config, log logrus.FieldLogger, out io.Writer, username, password string) error {
	if cfg.Storage.Driver == config.DriverMemory {
		return fmt.Errorf("teacher add needs a persistent storage driver, got %q", cfg.Storage.Driver)
	}
	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	auth, err := newAuthService(cfg, b, log)
	if err != nil {
		return err
	}
	teacher, err := auth.Register(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created teacher %q (id %d)\n", teacher.Username, teacher.ID)
	return nil
}
