package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/hudumalabs/districtbot/internal/config"
	"github.com/hudumalabs/districtbot/internal/crawler"
)

var crawlOutput string

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl the district website once and print or save the text",
	Long: `Runs a one-shot crawl of the configured official website with the same
budgets the server uses, so the collected text can be inspected before
citizens start asking questions against it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cfg.Site.URL == "" {
			return fmt.Errorf("no site.url configured in %s", cfgFile)
		}

		c := crawler.New(cfg.Site.MaxPages, cfg.Site.MaxChars, cfg.PageTimeout())

		bar := progressbar.Default(int64(cfg.Site.MaxPages), "crawling")
		c.OnPage = func(pageURL string) {
			bar.Add(1)
			if verbose {
				fmt.Fprintf(os.Stderr, "\n  %s\n", pageURL)
			}
		}

		text, err := c.Crawl(context.Background(), cfg.Site.URL)
		bar.Finish()
		if err != nil {
			return fmt.Errorf("crawling %s: %w", cfg.Site.URL, err)
		}

		if crawlOutput == "" {
			fmt.Println(text)
			return nil
		}

		outPath := crawlOutput
		if !filepath.IsAbs(outPath) {
			outPath = filepath.Join(cfg.DataDir, outPath)
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d characters to %s\n", len(text), outPath)
		return nil
	},
}

func init() {
	crawlCmd.Flags().StringVarP(&crawlOutput, "output", "o", "", "write the text to a file (relative paths go under data_dir)")
	rootCmd.AddCommand(crawlCmd)
}
