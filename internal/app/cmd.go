package app

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand はCLIのルートコマンドを生成する。
// サブコマンドを省略した場合はserveとして動作する。
func NewRootCommand(w io.Writer) *cobra.Command {
	serve := serveCmd(w)

	root := &cobra.Command{
		Use:           "volunteerhub",
		Short:         "Volunteer event roster and attendance API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	root.AddCommand(serve)
	root.AddCommand(migrateCmd(w))
	root.AddCommand(healthcheckCmd())

	return root
}

func serveCmd(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := Init(w)
			if err != nil {
				return err
			}
			slog.Info("starting application",
				slog.String("command", "serve"),
				slog.String("port", cfg.ServerPort),
			)
			return runServe(cmd.Context(), cfg)
		},
	}
}

func migrateCmd(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := Init(w)
			if err != nil {
				return err
			}
			return runMigrate(cfg)
		},
	}
}

// healthcheckCmd は軽量サブコマンドのため、設定の読み込みを行わない。
func healthcheckCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe the local /health endpoint (for distroless container health checks)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealthcheck(cmd.Context(), port)
		},
	}

	defaultPort := os.Getenv("SERVER_PORT")
	if defaultPort == "" {
		defaultPort = "8080"
	}
	cmd.Flags().StringVar(&port, "port", defaultPort, "port the API server listens on")

	return cmd
}

// Run はアプリケーションのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。ctxのキャンセルでサーバーを停止する。
func Run(ctx context.Context, w io.Writer, args []string) error {
	root := NewRootCommand(w)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
