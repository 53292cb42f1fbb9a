package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hudumalabs/districtbot/internal/bot"
	"github.com/hudumalabs/districtbot/internal/config"
	"github.com/hudumalabs/districtbot/internal/crawler"
	"github.com/hudumalabs/districtbot/internal/dashboard"
	"github.com/hudumalabs/districtbot/internal/db"
	"github.com/hudumalabs/districtbot/internal/flow"
	"github.com/hudumalabs/districtbot/internal/llm"
	"github.com/hudumalabs/districtbot/internal/resolver"
	"github.com/hudumalabs/districtbot/internal/server"
	"github.com/hudumalabs/districtbot/internal/session"
	"github.com/hudumalabs/districtbot/internal/ticket"
	"github.com/hudumalabs/districtbot/internal/whatsapp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the WhatsApp bot server",
	Long:  `Starts the districtbot server: WhatsApp webhook, ticket REST API and officer dashboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "districtbot.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		sessions := session.NewStore(database)
		tickets := ticket.NewStore(database)

		// Typed-nil pointers must not reach the interface fields, so the
		// resolver is only assigned when it exists.
		var botResolver bot.Resolver
		var apiResolver ticket.Resolver
		if res := buildResolver(cfg); res != nil {
			botResolver = res
			apiResolver = res
		}

		lang := flow.Language(cfg.DefaultLanguage)
		engine := &flow.Engine{
			SLA:          cfg.AnswerSLA(),
			SupportPhone: cfg.SupportPhone,
			// The store pre-checks ids so two citizens submitting in the same
			// instant cannot be confirmed with the same ticket number.
			NewTicketID: tickets.NewUniqueTicketID,
		}

		waClient := whatsapp.NewClient(cfg.WhatsApp.PhoneID, cfg.WhatsApp.AccessToken)
		processor := bot.NewProcessor(sessions, tickets, engine, waClient, botResolver,
			lang, cfg.SessionIdleTimeout(), cfg.ResolverWorkers)
		defer processor.Close()

		srv := server.New(server.Config{Port: cfg.Port, AllowAll: true})
		r := srv.Router()

		whatsapp.NewWebhook(cfg.WhatsApp.VerifyToken, processor).RegisterRoutes(r)
		ticket.NewAPI(tickets, apiResolver, cfg.APIKey).RegisterRoutes(r)
		dashboard.New(tickets, waClient, engine, lang,
			cfg.Dashboard.Username, cfg.Dashboard.Password).RegisterRoutes(r)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "districtbot v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Language: %s\n", cfg.DefaultLanguage)
		if cfg.Site.URL != "" {
			fmt.Fprintf(os.Stderr, "  Site: %s (up to %d pages)\n", cfg.Site.URL, cfg.Site.MaxPages)
		}

		return srv.Start()
	},
}

// buildResolver assembles the knowledge cascade from the config. A missing
// OpenAI key returns nil; questions then wait for officers on the dashboard.
func buildResolver(cfg *config.Config) *resolver.Resolver {
	if cfg.OpenAI.APIKey == "" {
		fmt.Fprintln(os.Stderr, "Warning: no OpenAI API key configured; question auto-answering is disabled")
		return nil
	}

	res := &resolver.Resolver{
		Provider: llm.NewRateLimitedProvider(
			llm.NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model), 30),
		Model:   cfg.OpenAI.Model,
		Timeout: cfg.ModelTimeout(),
	}

	docPath := filepath.Join(cfg.DataDir, cfg.KnowledgeDoc)
	res.Knowledge = func() (string, error) {
		data, err := os.ReadFile(docPath)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	if cfg.Site.URL != "" {
		c := crawler.New(cfg.Site.MaxPages, cfg.Site.MaxChars, cfg.PageTimeout())
		res.Site = crawler.NewCache(c, cfg.Site.URL, cfg.SiteCacheTTL())
	}
	return res
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
