package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"studysnatcher/pkg/auth"
	"studysnatcher/pkg/config"
	"studysnatcher/pkg/filter"
	"studysnatcher/pkg/logger"
	"studysnatcher/pkg/scraper"
	"studysnatcher/pkg/ui"
)

var (
	downloadOutput  string
	downloadPDF     bool
	downloadAccount string
	downloadFilters []string
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download <course-url>",
	Short: "Download all documents of a course",
	Long: `Download every document of a Studydrive course into a folder named
after the course.

The course URL must point to a course page, for example:
  https://www.studydrive.net/course/applied-statistics/4821

Credentials come from stored accounts (see 'studysnatcher auth login'),
the STUDYSNATCHER_EMAIL and STUDYSNATCHER_PASSWORD environment
variables, or an interactive prompt.

Filters restrict the download to documents whose feed record matches
every given field. Dotted keys walk into nested fields; string values
match as case-insensitive substrings, everything else must be equal.`,
	Example: `  # Download a whole course
  studysnatcher download https://www.studydrive.net/course/applied-statistics/4821

  # Prefer PDF-converted files and pick the output directory
  studysnatcher download --pdf --output ~/uni <course-url>

  # Only documents of one semester by one professor
  studysnatcher download --filter semester=WS22 --filter professor=huber <course-url>`,
	Args: cobra.ExactArgs(1),
	Run:  runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "base output directory")
	downloadCmd.Flags().BoolVar(&downloadPDF, "pdf", false, "request PDF-converted files when available")
	downloadCmd.Flags().StringVarP(&downloadAccount, "account", "a", "", "stored account email to use")
	downloadCmd.Flags().StringArrayVarP(&downloadFilters, "filter", "f", nil, "field filter as key=value (repeatable)")
}

func runDownload(cmd *cobra.Command, args []string) {
	courseURL := strings.TrimSpace(args[0])

	flags := make(map[string]interface{})
	if downloadOutput != "" {
		flags["output"] = downloadOutput
	}
	if cmd.Flags().Changed("pdf") {
		flags["pdf"] = downloadPDF
	}
	if downloadAccount != "" {
		flags["email"] = downloadAccount
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		ui.PrintError("Failed to initialize logging", err.Error())
		os.Exit(1)
	}

	spec, err := parseFilters(downloadFilters)
	if err != nil {
		ui.PrintError("Invalid filter", err.Error())
		os.Exit(1)
	}

	email, password, err := resolveCredentials(cfg.Studydrive.Email)
	if err != nil {
		ui.PrintError("No usable credentials", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scraper.New(cfg, log)
	summary, err := s.Run(ctx, email, password, courseURL, cfg.Download.PreferPDF, spec)
	if err != nil {
		ui.PrintError("Download failed", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Course %q: %d of %d documents saved", summary.Course.Name, summary.Saved, summary.Total))
	if summary.Skipped > 0 {
		ui.PrintWarning(fmt.Sprintf("%d documents skipped", summary.Skipped))
		for _, result := range summary.Results {
			if result.Err != nil {
				ui.PrintWarning("  " + result.Document.Name)
			}
		}
	}
}

// parseFilters turns repeated key=value flags into a filter spec.
// Values that parse as integers or booleans are compared as such;
// everything else stays a string and matches as a substring.
func parseFilters(raw []string) (filter.Spec, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	spec := make(filter.Spec, len(raw))
	for _, entry := range raw {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("filter %q is not of the form key=value", entry)
		}

		if n, err := strconv.Atoi(value); err == nil {
			spec[key] = n
		} else if b, err := strconv.ParseBool(value); err == nil {
			spec[key] = b
		} else {
			spec[key] = value
		}
	}

	return spec, nil
}

// resolveCredentials finds the login to use, in order: a stored account
// matching the configured email, the default stored account or the
// environment, and finally interactive prompts.
func resolveCredentials(email string) (string, string, error) {
	manager, err := auth.NewManager()
	if err == nil {
		if email != "" {
			if account, err := manager.Retrieve(email); err == nil {
				return account.Email, account.Password, nil
			}
		} else if account, err := manager.RetrieveDefault(); err == nil {
			return account.Email, account.Password, nil
		}
	}

	if email == "" {
		email, err = promptLine("Studydrive email: ")
		if err != nil {
			return "", "", err
		}
	}
	if email == "" {
		return "", "", fmt.Errorf("email is required")
	}

	fmt.Printf("Password for %s: ", email)
	password, err := readPassword()
	if err != nil {
		return "", "", err
	}
	if password == "" {
		return "", "", fmt.Errorf("password is required")
	}

	return email, password, nil
}
