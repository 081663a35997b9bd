package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fleetHQ/internal/auth"
	"fleetHQ/internal/config"
	"fleetHQ/internal/db"
	"fleetHQ/internal/events"
	grpcserver "fleetHQ/internal/grpc"
	"fleetHQ/internal/httpapi"
	"fleetHQ/internal/mongostore"
	"fleetHQ/internal/scheduling"
	"fleetHQ/models"
	"fleetHQ/repository"
)

var devMode bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "fleethq",
		Short: "Drone fleet and survey mission scheduler",
		Long: `fleethq serves the drone and mission API over gRPC and HTTP.
It also carries the admin commands for schema migrations, users and tokens.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Fall back to a development JWT secret")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if devMode {
		return config.LoadWithDefaults()
	}
	return config.Load()
}

// openStore opens the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		s, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DBName, cfg.Mongo.Transactions)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.Close(ctx); err != nil {
				log.Printf("close mongo: %v", err)
			}
		}, nil
	default:
		d, err := db.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		return repository.NewSQLStore(d), func() {
			if err := d.Close(); err != nil {
				log.Printf("close db: %v", err)
			}
		}, nil
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC and HTTP servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log.Printf("Configuration loaded: %v", cfg)

			store, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			hub := events.NewHub()
			svc := scheduling.NewService(store, scheduling.Options{
				MissionDuration: cfg.Scheduling.MissionDuration,
				ConflictMode:    scheduling.ConflictMode(cfg.Scheduling.ConflictMode),
				Publisher:       hub,
			})

			stopGRPC, err := grpcserver.StartGRPC(cfg, store.Users(), svc)
			if err != nil {
				return fmt.Errorf("start grpc: %w", err)
			}
			log.Printf("gRPC server listening on %s", cfg.GRPC.Address)

			router := httpapi.NewRouter(httpapi.Deps{
				Service:     svc,
				Users:       store.Users(),
				JWTSecret:   cfg.Auth.JWTSecret,
				Hub:         hub,
				CORSOrigins: cfg.HTTP.CORSOrigins,
			})
			stopHTTP, err := httpapi.StartHTTP(cfg.HTTP.Address, router)
			if err != nil {
				_ = stopGRPC(context.Background())
				return fmt.Errorf("start http: %w", err)
			}
			log.Printf("HTTP server listening on %s", cfg.HTTP.Address)

			sigc := make(chan os.Signal, 1)
			signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
			<-sigc

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := stopHTTP(ctx); err != nil {
				log.Printf("http shutdown: %v", err)
			}
			if err := stopGRPC(ctx); err != nil {
				log.Printf("grpc shutdown: %v", err)
			}
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the SQLite schema",
	}
	withDB := func(run func(cfg *config.Config) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Database.Driver != config.DriverSQLite {
				return fmt.Errorf("migrations apply to the sqlite driver only (driver is %q)", cfg.Database.Driver)
			}
			return run(cfg)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: withDB(func(cfg *config.Config) error {
			d, err := db.OpenWithoutMigrations(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := db.Migrate(d); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert the last applied migration",
		RunE: withDB(func(cfg *config.Config) error {
			d, err := db.OpenWithoutMigrations(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := db.RollbackLast(d); err != nil {
				return err
			}
			fmt.Println("last migration reverted")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: withDB(func(cfg *config.Config) error {
			d, err := db.OpenWithoutMigrations(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer d.Close()
			rows, err := db.Status(d)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
			for _, r := range rows {
				fmt.Fprintf(w, "%04d\t%s\t%v\n", r.Version, r.Name, r.Applied)
			}
			return w.Flush()
		}),
	})
	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var role string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			u, err := store.Users().Create(cmd.Context(), args[0], models.Role(role))
			if err != nil {
				return err
			}
			fmt.Printf("created user %s (id %d, role %s)\n", u.Username, u.ID, u.Role)
			return nil
		},
	}
	add.Flags().StringVar(&role, "role", string(models.RoleOperator), "operator, manager or admin")

	setRole := &cobra.Command{
		Use:   "set-role <username> <role>",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			if err := store.Users().UpdateRole(cmd.Context(), args[0], models.Role(args[1])); err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", args[0], args[1])
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			users, err := store.Users().List(cmd.Context(), 0, 0)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tROLE")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Username, u.Role)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(add, setRole, list)
	return cmd
}

func tokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <username>",
		Short: "Issue a bearer token for an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			u, err := store.Users().GetByUsername(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("user %q not found", args[0])
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.Auth.TokenTTL
			}
			tok, err := auth.IssueToken(cfg.Auth.JWTSecret, u.Username, string(u.Role), ttl)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime; defaults to JWT_TTL, 0 means no expiry")
	return cmd
}
