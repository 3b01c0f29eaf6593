package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"gallery-go/internal/app"
	"gallery-go/internal/config"
	"gallery-go/internal/format"
	"gallery-go/internal/gallery"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var verbose bool

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a GalleryApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "build", "migrate").
func newApp(cmd *cobra.Command, operation string) (*app.GalleryApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewGalleryApp(cmd.Context(), cfg, operation, app.Options{Verbose: verbose})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// styledOutput reports whether stdout is a terminal.
func styledOutput() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func printStats(res *gallery.BuildResult) {
	fmt.Printf("Photos:    %d\n", res.Total)
	fmt.Printf("New:       %d\n", res.New)
	fmt.Printf("Updated:   %d\n", res.Updated)
	fmt.Printf("Unchanged: %d\n", res.Unchanged)
	fmt.Printf("Deleted:   %d\n", res.Deleted)
	fmt.Printf("Skipped:   %d\n", res.Skipped)
	if res.Migrated {
		from := res.PreviousVersion.String()
		if res.Reset {
			fmt.Printf("Manifest %s discarded and rebuilt as %s\n", from, res.Document.Version)
		} else {
			fmt.Printf("Manifest migrated %s -> %s\n", from, res.Document.Version)
		}
	}
}

var rootCmd = &cobra.Command{
	Use:          "gallery",
	Short:        "Build the photo manifest for the gallery site",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Photos:     %s\n", cfg.Storage.FSRoot)
		fmt.Printf("Manifest:   %s\n", cfg.Manifest.Path)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Storage:    %s\n", cfg.Storage.Type)
		switch cfg.Storage.Type {
		case "s3":
			fmt.Printf("  Bucket:   %s\n", cfg.Storage.S3Bucket)
			fmt.Printf("  Region:   %s\n", cfg.Storage.S3Region)
			if cfg.Storage.S3Endpoint != "" {
				fmt.Printf("  Endpoint: %s\n", cfg.Storage.S3Endpoint)
			}
		case "filesystem":
			fmt.Printf("  Root:     %s\n", cfg.Storage.FSRoot)
		}
		if cfg.Storage.Prefix != "" {
			fmt.Printf("  Prefix:   %s\n", cfg.Storage.Prefix)
		}
		if len(cfg.Storage.Exclude) > 0 {
			fmt.Printf("  Exclude:  %s\n", strings.Join(cfg.Storage.Exclude, ", "))
		}
		fmt.Printf("Manifest:   %s\n", cfg.Manifest.Type)
		switch cfg.Manifest.Type {
		case "filesystem":
			fmt.Printf("  Path:     %s\n", cfg.Manifest.Path)
		case "s3":
			fmt.Printf("  Key:      %s\n", cfg.Manifest.S3Key)
		}
		fmt.Printf("Database:   %s\n", cfg.Database.Type)
		policy := cfg.Retry.Policy()
		fmt.Printf("Retry:      %d attempts, %s base, %s max\n", policy.MaxAttempts, policy.BaseDelay, policy.MaxDelay)
		return nil
	},
}

// build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the photo manifest from storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		a, err := newApp(cmd, "build")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Build(cmd.Context(), gallery.BuildOptions{Force: force, DryRun: dryRun})
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}

		fmt.Printf("Build %s\n", a.BuildID())
		printStats(res)
		if res.Saved {
			fmt.Printf("Manifest written to %s\n", a.ManifestLocation())
		} else {
			fmt.Println("Dry run: manifest not written.")
		}
		return nil
	},
}

// ls command
var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List storage objects and how they are classified",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		a, err := newApp(cmd, "ls")
		if err != nil {
			return err
		}
		defer a.Close()

		infos, err := a.Inspect(cmd.Context(), all)
		if err != nil {
			return err
		}

		if len(infos) == 0 {
			fmt.Println("No objects found.")
			return nil
		}

		var total uint64
		rows := make([][]string, 0, len(infos))
		for _, info := range infos {
			kind := "image"
			switch {
			case !info.Supported:
				kind = "skipped"
			case info.Heic:
				kind = "heic"
			}
			size := "-"
			if info.Size != nil {
				size = humanize.Bytes(uint64(*info.Size))
				total += uint64(*info.Size)
			}
			rows = append(rows, []string{info.Key, kind, size, formatTime(info.LastModified)})
		}

		fmt.Println(renderTable(
			[]string{"KEY", "KIND", "SIZE", "MODIFIED"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			styledOutput(),
		))
		fmt.Printf("%d object(s), %s\n", len(infos), humanize.Bytes(total))
		return nil
	},
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the stored manifest to the current version",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "migrate")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Migrate(cmd.Context())
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		if !res.Saved {
			fmt.Printf("Manifest is already %s, nothing to do.\n", res.Document.Version)
			return nil
		}
		if res.Reset {
			fmt.Printf("Manifest %s could not be migrated and was reset; run build to repopulate it.\n", res.PreviousVersion)
			return nil
		}
		fmt.Printf("Migrated manifest %s -> %s (%d photos)\n", res.PreviousVersion, res.Document.Version, res.Total)
		return nil
	},
}

// formats command
var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported image formats",
	Run: func(cmd *cobra.Command, args []string) {
		for _, ext := range format.SupportedFormats.Extensions() {
			note := ""
			if format.HeicFormats.Contains(ext) {
				note = "  (heic)"
			}
			fmt.Printf("%s%s\n", ext, note)
		}
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View build history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "history")
		if err != nil {
			return err
		}
		defer a.Close()

		builds, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(builds) == 0 {
			fmt.Println("No builds recorded.")
			return nil
		}

		rows := make([][]string, 0, len(builds))
		for _, b := range builds {
			duration := ""
			if b.FinishedAt.Valid {
				d := b.FinishedAt.Time.Sub(b.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			rows = append(rows, []string{
				fmt.Sprintf("#%d", b.ID),
				b.Operation,
				humanize.Time(b.StartedAt),
				b.Status,
				fmt.Sprintf("%d", b.Stats.Total),
				fmt.Sprintf("+%d ~%d -%d", b.Stats.New, b.Stats.Updated, b.Stats.Deleted),
				b.ManifestVersion,
				duration,
			})
		}

		fmt.Println(renderTable(
			[]string{"ID", "OPERATION", "STARTED", "STATUS", "PHOTOS", "CHANGES", "VERSION", "DURATION"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight},
			styledOutput(),
		))
		return nil
	},
}

// validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check storage access and the stored manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "validate")
		if err != nil {
			return err
		}
		defer a.Close()

		report := a.Validate(cmd.Context())

		if report.StorageErr != nil {
			fmt.Printf("Storage:  FAIL  %v\n", report.StorageErr)
		} else {
			fmt.Println("Storage:  ok")
		}

		switch {
		case report.ManifestErr != nil:
			fmt.Printf("Manifest: FAIL  %v\n", report.ManifestErr)
		case report.ManifestFound:
			fmt.Printf("Manifest: ok    %s at %s\n", report.ManifestVersion, a.ManifestLocation())
		default:
			fmt.Printf("Manifest: none  %s (run build to create it)\n", a.ManifestLocation())
		}

		if !report.OK() {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().Bool("force", false, "Ignore the stored manifest and rebuild from storage")
	buildCmd.Flags().Bool("dry-run", false, "Compute the manifest without writing it")
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().BoolP("all", "a", false, "Include objects that are not supported images")
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of builds to show")
	rootCmd.AddCommand(validateCmd)
}
