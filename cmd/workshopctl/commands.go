package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-WorkshopService/internal/config"
	"github.com/m04kA/SMC-WorkshopService/internal/infra/storage/migrations"
	resourceRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/resource"
	resourcesService "github.com/m04kA/SMC-WorkshopService/internal/service/resources"
	"github.com/m04kA/SMC-WorkshopService/internal/service/resources/models"
	"github.com/m04kA/SMC-WorkshopService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WorkshopService/pkg/logger"
)

// ResourceService операции реестра, доступные из CLI
type ResourceService interface {
	ListAll(ctx context.Context) (*models.ResourceListResponse, error)
	SetActive(ctx context.Context, id int64, active bool) (*models.ResourceResponse, error)
	Create(ctx context.Context, req *models.CreateResourceRequest) (*models.ResourceResponse, error)
}

// env зависимости команд; в тестах подменяются
type env struct {
	out       io.Writer
	openDB    func(cfg *config.Config) (*sql.DB, error)
	migrateUp func(db *sql.DB) error
	version   func(db *sql.DB) (uint, bool, error)
	resources func(db *sql.DB, log *logger.Logger) ResourceService
}

func defaultEnv(out io.Writer) *env {
	return &env{
		out: out,
		openDB: func(cfg *config.Config) (*sql.DB, error) {
			db, err := sql.Open("postgres", cfg.Database.DSN())
			if err != nil {
				return nil, err
			}
			if err := db.Ping(); err != nil {
				db.Close()
				return nil, err
			}
			return db, nil
		},
		migrateUp: migrations.Up,
		version:   migrations.Version,
		resources: func(db *sql.DB, log *logger.Logger) ResourceService {
			return resourcesService.NewService(resourceRepo.NewRepository(dbmetrics.Wrap(db, nil)), log)
		},
	}
}

type session struct {
	db  *sql.DB
	log *logger.Logger
}

func (e *env) open(configPath string) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	db, err := e.openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &session{db: db, log: logger.NewWithWriter(os.Stderr, cfg.Logs.Level)}, nil
}

func newRootCmd(e *env) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "workshopctl",
		Short:        "Administrative tool for the workshop intake service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "path to config.toml")
	root.SetOut(e.out)

	root.AddCommand(newMigrateCmd(e, &configPath), newResourcesCmd(e, &configPath))
	return root
}

func newMigrateCmd(e *env, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := e.open(*configPath)
			if err != nil {
				return err
			}
			defer s.db.Close()

			if err := e.migrateUp(s.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := e.open(*configPath)
			if err != nil {
				return err
			}
			defer s.db.Close()

			version, dirty, err := e.version(s.db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
			return nil
		},
	})

	return cmd
}

func newResourcesCmd(e *env, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Manage workshop lifts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all lifts, including inactive ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := e.open(*configPath)
			if err != nil {
				return err
			}
			defer s.db.Close()

			result, err := e.resources(s.db, s.log).ListAll(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tNUMBER\tNAME\tACTIVE")
			for _, r := range result.Resources {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%t\n", r.ID, r.Category, r.Number, r.Name, r.Active)
			}
			return tw.Flush()
		},
	})

	var active bool
	setActive := &cobra.Command{
		Use:   "set-active <id>",
		Short: "Enable or disable a lift for new bookings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid resource id %q", args[0])
			}

			s, err := e.open(*configPath)
			if err != nil {
				return err
			}
			defer s.db.Close()

			result, err := e.resources(s.db, s.log).SetActive(cmd.Context(), id, active)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "resource %d (%s) active=%t\n", result.ID, result.Name, result.Active)
			return nil
		},
	}
	setActive.Flags().BoolVar(&active, "active", true, "new active flag")
	cmd.AddCommand(setActive)

	var create models.CreateResourceRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new lift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := e.open(*configPath)
			if err != nil {
				return err
			}
			defer s.db.Close()

			result, err := e.resources(s.db, s.log).Create(cmd.Context(), &create)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created resource %d (%s)\n", result.ID, result.Name)
			return nil
		},
	}
	createCmd.Flags().StringVar(&create.Category, "category", "", "ELEVADOR_3D or ELEVADOR_TIJERA")
	createCmd.Flags().IntVar(&create.Number, "number", 0, "number within the category")
	createCmd.Flags().StringVar(&create.Name, "name", "", "display name")
	_ = createCmd.MarkFlagRequired("category")
	_ = createCmd.MarkFlagRequired("number")
	cmd.AddCommand(createCmd)

	return cmd
}
