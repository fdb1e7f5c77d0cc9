// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-embeddings/internal/dataset"
	"github.com/pdiddy/paper-embeddings/internal/scholar"
	"github.com/pdiddy/paper-embeddings/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a labeled embedding dataset from CSV sources",
	Long: `Build reads each source CSV in order, resolves titles to paper IDs,
fetches the SPECTER v2 embedding of every paper, appends the paper's label,
and writes all rows once as a flat array (.npy by default).

Sources come from the "dataset.sources" list of the config file, or from
repeated --source flags of the form

  path=negative_papers.csv,kind=title,column=Title,label=0,limit=5
  path=labeled.csv,kind=id,column=ID,label_column=Is MLSys?,label_positive=Y
  path=seed.csv,kind=id,column=Paper ID,label=1

Rate-limited lookups are retried after a fixed delay; other failures are
logged and the paper is skipped.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringArray("source", nil, "source spec (repeatable): path=...,kind=title|id,column=...,label=0|1 or label_column=...")
	buildCmd.Flags().StringP("output", "o", "", "dump path (default final_embedding.npy)")
	buildCmd.Flags().String("format", "", "dump format: npy or json")
	buildCmd.Flags().Bool("gzip", false, "gzip the dump")
	buildCmd.Flags().Bool("report", false, "write a YAML run report next to the dump")
	buildCmd.Flags().Duration("retry-delay", 0, "sleep between rate-limited attempts (default 1s)")
	buildCmd.Flags().Int("max-attempts", 0, "attempts per paper on rate limit (0 = unlimited)")
	buildCmd.Flags().Bool("progress", false, "show a progress spinner")

	_ = viper.BindPFlag("dataset.output", buildCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("dataset.format", buildCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("dataset.gzip", buildCmd.Flags().Lookup("gzip"))
	_ = viper.BindPFlag("dataset.report", buildCmd.Flags().Lookup("report"))
	_ = viper.BindPFlag("dataset.retry.delay", buildCmd.Flags().Lookup("retry-delay"))
	_ = viper.BindPFlag("dataset.retry.max_attempts", buildCmd.Flags().Lookup("max-attempts"))

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	specs, _ := cmd.Flags().GetStringArray("source")
	if len(specs) > 0 {
		cfg.Dataset.Sources = nil
		for _, s := range specs {
			src, err := parseSourceSpec(s)
			if err != nil {
				return err
			}
			cfg.Dataset.Sources = append(cfg.Dataset.Sources, src)
		}
	}
	if len(cfg.Dataset.Sources) == 0 {
		return fmt.Errorf("no sources: pass --source or set dataset.sources in the config file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := scholar.NewClient(cfg.Client, log)
	driver := dataset.NewDriver(client, cfg.Dataset.Retry, log)

	if showProgress, _ := cmd.Flags().GetBool("progress"); showProgress {
		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetDescription(color.CyanString("looking up papers")),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetItsString("papers"),
			progressbar.OptionShowIts(),
			progressbar.OptionShowCount(),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetRenderBlankState(true),
		)
		defer bar.Finish()
		driver.Progress = bar
	}

	res, err := driver.Build(ctx, cfg.Dataset.Sources)
	if err != nil {
		return fmt.Errorf("building dataset: %w", err)
	}

	path, err := dataset.WriteDump(cfg.Dataset, &res.Dataset)
	if err != nil {
		return err
	}
	color.Green("Wrote %d rows to %s", res.Dataset.Len(), path)

	if cfg.Dataset.Report {
		reportPath := dataset.ReportPath(path)
		if err := dataset.WriteReport(reportPath, dataset.NewReport(res, path, cfg.Dataset.Format)); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Report:", reportPath)
	}

	if skipped := res.Total.Skipped(); skipped > 0 {
		color.Yellow("%d paper(s) skipped: %s", skipped, res.Total)
	}
	return nil
}

// parseSourceSpec parses a comma-separated key=value source description.
// Values may not contain commas; use the config file for such columns.
func parseSourceSpec(spec string) (types.SourceConfig, error) {
	var src types.SourceConfig
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return src, fmt.Errorf("source %q: expected key=value, got %q", spec, part)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "path":
			src.Path = value
		case "kind":
			src.Kind = types.SourceKind(value)
		case "column":
			src.Column = value
		case "label":
			n, err := strconv.Atoi(value)
			if err != nil {
				return src, fmt.Errorf("source %q: label: %w", spec, err)
			}
			src.Label = n
		case "label_column":
			src.LabelColumn = value
		case "label_positive":
			src.LabelPositive = value
		case "limit":
			n, err := strconv.Atoi(value)
			if err != nil {
				return src, fmt.Errorf("source %q: limit: %w", spec, err)
			}
			src.Limit = n
		case "ids":
			src.IDs = append(src.IDs, strings.Fields(strings.ReplaceAll(value, ";", " "))...)
		default:
			return src, fmt.Errorf("source %q: unknown key %q", spec, key)
		}
	}
	return src, nil
}
