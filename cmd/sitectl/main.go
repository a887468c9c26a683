package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"securecam-site/config"
	"securecam-site/models"
	"securecam-site/recommender"
	"securecam-site/repository"
	"securecam-site/service"
	"securecam-site/sitedata"
	"securecam-site/utils"
)

var version = "dev"

var (
	documentPath string
	rulesPath    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// defaultDocumentPath is where sitectl keeps its working copy of the site document
func defaultDocumentPath() string {
	return filepath.Join(xdg.DataHome, "sitectl", "site_data.json")
}

// loadConfig reads .env when present and parses the environment
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// openStore opens the local working copy, seeded with defaults when it does not exist yet
func openStore(ctx context.Context) (*sitedata.Store, error) {
	repo, err := repository.NewFileSiteDataRepository(documentPath)
	if err != nil {
		return nil, err
	}
	return sitedata.Open(ctx, repo), nil
}

func loadEngine() (*recommender.Engine, error) {
	if rulesPath == "" {
		return recommender.NewDefaultEngine()
	}
	rules, err := recommender.LoadRules(rulesPath)
	if err != nil {
		return nil, err
	}
	return recommender.NewEngine(rules), nil
}

var rootCmd = &cobra.Command{
	Use:          "sitectl",
	Short:        "Operate the security equipment site document",
	SilenceUsage: true,
	Version:      version,
}

// recommend command
var (
	answers         models.QuestionnaireAnswers
	cartFlag        map[string]int
	includeOptional bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Run the project builder recommender against the local catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		engine, err := loadEngine()
		if err != nil {
			return err
		}

		doc, _ := store.Snapshot()
		resp := engine.Plan(doc.Catalog.ActiveProducts(), models.RecommendRequest{
			Answers:         answers,
			Cart:            models.Cart(cartFlag).Clone(),
			IncludeOptional: includeOptional,
		})

		fmt.Printf("Cameras: %d\n", resp.CamerasCount)
		fmt.Print(recommender.Result{System: resp.System, Suggestions: resp.Suggestions})
		fmt.Println("Cart:")
		var total int64
		for _, line := range resp.Cart.Lines(doc.Catalog) {
			total += line.LineTotal
			fmt.Printf("  %-20s x%-3d %12s\n", line.Product.ID, line.Quantity, utils.FormatPrice(line.LineTotal))
		}
		fmt.Printf("Total: %s\n", utils.FormatPrice(total))
		return nil
	},
}

// push command
var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Commit the local site document to the GitHub repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(documentPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", documentPath, err)
		}

		svc := service.NewSiteDataService(cfg.GitHubSettings(), cfg.SiteDataPath, cfg.GitHubAPIURL, &http.Client{Timeout: 30 * time.Second})
		result, err := svc.Save(cmd.Context(), raw)
		if err != nil {
			var upstream *models.UpstreamError
			if errors.As(err, &upstream) {
				return fmt.Errorf("%w: %s", err, upstream.Body)
			}
			return err
		}
		fmt.Printf("Committed %s (%s)\n", result.Path, result.CommitSHA)
		if result.HTMLURL != "" {
			fmt.Println(result.HTMLURL)
		}
		return nil
	},
}

// pull command
var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the local site document with the committed one",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}

		svc := service.NewSiteDataService(cfg.GitHubSettings(), cfg.SiteDataPath, cfg.GitHubAPIURL, &http.Client{Timeout: 30 * time.Second})
		revision, err := store.RefreshRemote(cmd.Context(), svc, cfg.GitHubSettings())
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s (revision %s)\n", documentPath, revision)
		return nil
	},
}

// backups command
var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List the Drive snapshots of the site document",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		backup, err := service.NewDriveBackupService(cmd.Context(), cfg.GoogleCredentials, cfg.DriveBackupFolderID)
		if err != nil {
			return err
		}
		entries, err := backup.ListBackups(cmd.Context())
		if err != nil {
			return err
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedTime > entries[j].CreatedTime })
		for _, e := range entries {
			fmt.Printf("%s  %-40s %8d bytes  %s\n", e.CreatedTime, e.Name, e.Size, e.ID)
		}
		if len(entries) == 0 {
			fmt.Println("No backups found")
		}
		return nil
	},
}

// mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the recommender and catalog as MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		engine, err := loadEngine()
		if err != nil {
			return err
		}
		server := newMCPServer(store, engine)
		return server.Run(cmd.Context(), &mcp.StdioTransport{})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&documentPath, "file", defaultDocumentPath(), "local site document")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "recommender rules TOML (defaults to the built-in table)")

	f := recommendCmd.Flags()
	f.StringVar(&answers.Priority, "priority", "", "price | quality | scalable")
	f.StringVar(&answers.InternetType, "internet", "", "internet service type (none for no internet)")
	f.StringVar(&answers.RecorderSameAsInternet, "recorder-same-as-internet", "yes", "yes | no")
	f.StringVar(&answers.AvgDistance, "distance", "", "0-30 | 30-70 | 70-100 | 100+")
	f.StringVar(&answers.CableDifficulty, "cabling", "", "easy | medium | hard")
	f.BoolVar(&answers.SmartAlerts, "smart-alerts", false, "want smart motion alerts")
	f.BoolVar(&answers.WantUps, "ups", false, "want a UPS")
	f.StringVar(&answers.NightMode, "night", "", "bw | color")
	f.StringToIntVar(&cartFlag, "cart", nil, "products already chosen, e.g. cam-ip-4mp=4")
	f.BoolVar(&includeOptional, "include-optional", false, "add optional suggestions to the cart")

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(mcpCmd)
}
