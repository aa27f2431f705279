// Package cli implements the warmscout command-line interface.
// It wires configuration, storage, providers and services together and
// exposes them as cobra commands.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/warmpath/scout-cli/internal/adapters/driven/config/file"
	"github.com/warmpath/scout-cli/internal/adapters/driven/storage/sqlite"
	"github.com/warmpath/scout-cli/internal/core/domain"
	"github.com/warmpath/scout-cli/internal/core/ports/driven"
	"github.com/warmpath/scout-cli/internal/core/ports/driving"
	"github.com/warmpath/scout-cli/internal/core/services"
	"github.com/warmpath/scout-cli/internal/logger"
	"github.com/warmpath/scout-cli/internal/providers/linkedin"
	"github.com/warmpath/scout-cli/internal/providers/static"
)

// version is set at build time via -ldflags.
var version = "dev"

var verboseFlag bool

// Services injected by InitServices. Tests swap these for mocks.
var (
	scoutService    driving.ScoutService
	learningService driving.LearningService
	contactStore    driven.ContactStore
	configStore     driven.ConfigStore
)

var rootCmd = &cobra.Command{
	Use:   "warmscout",
	Short: "Find warm introduction paths into target companies",
	Long: `warmscout discovers second-degree targets at a company you want an
introduction into, then ranks the connectors in your own network who can
make that introduction.

Runs are bounded and fully recorded: every provider attempt, every
normalised target and every scored connector path is persisted locally.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the CLI. Wiring failures are reported on stderr.
func Execute() {
	if err := InitServices(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// InitServices builds the production dependency graph: TOML config,
// sqlite storage, the provider chain and the core services.
func InitServices() error {
	cfg, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("initialising config: %w", err)
	}
	configStore = cfg

	store, err := sqlite.NewStore(cfg.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("initialising storage: %w", err)
	}

	contactStore = store.ContactStore()

	learning := services.NewLearningService(store.LearningStore())
	learningService = learning

	scout := services.NewScoutService(
		store.ScoutStore(),
		contactStore,
		buildProviderChain(cfg),
		services.ScoutOptions{
			MinConfidence:    cfg.GetFloat("scout.min_confidence"),
			GuardrailPenalty: cfg.GetFloat("scout.guardrail_penalty"),
			Weights:          configuredWeights(cfg),
		},
	)
	scout.SetWeightSource(learning)
	scoutService = scout

	return nil
}

// configuredWeights reads a fixed scoring-weight override from config.
// Returns nil when no weight key is set, leaving the active learning
// profile in charge.
func configuredWeights(cfg driven.ConfigStore) *domain.ScoringWeights {
	weights := domain.ScoringWeights{
		CompanyAlignment:   cfg.GetFloat("weights.company_alignment"),
		RoleAlignment:      cfg.GetFloat("weights.role_alignment"),
		Relationship:       cfg.GetFloat("weights.relationship"),
		ConnectorInfluence: cfg.GetFloat("weights.connector_influence"),
		TargetConfidence:   cfg.GetFloat("weights.target_confidence"),
		AskFit:             cfg.GetFloat("weights.ask_fit"),
		Safety:             cfg.GetFloat("weights.safety"),
	}
	if weights == (domain.ScoringWeights{}) {
		return nil
	}
	return &weights
}

// buildProviderChain assembles the discovery chain from configuration.
// Order is significant: earlier providers are queried first. Unknown names
// are skipped with a warning rather than failing startup.
func buildProviderChain(cfg driven.ConfigStore) []driven.ScoutProvider {
	names := cfg.GetStringSlice("scout.providers")
	if len(names) == 0 {
		names = []string{linkedin.ProviderName, static.ProviderName}
	}

	var pacer *linkedin.Pacer
	if delay := cfg.GetInt("linkedin.min_delay_ms"); delay > 0 {
		pacer = linkedin.NewPacer(time.Duration(delay) * time.Millisecond)
	} else {
		pacer = linkedin.NewPacer(linkedin.DefaultMinDelay)
	}

	var chain []driven.ScoutProvider
	for _, name := range names {
		switch name {
		case linkedin.ProviderName:
			chain = append(chain, linkedin.New(linkedin.Options{
				Cookie:  cfg.GetString("linkedin.cookie"),
				Timeout: time.Duration(cfg.GetInt("linkedin.timeout_ms")) * time.Millisecond,
				BaseURL: cfg.GetString("linkedin.base_url"),
				Pacer:   pacer,
			}))
		case static.ProviderName:
			chain = append(chain, static.NewFromJSON(readSeedFile(cfg.GetString("scout.seed_file"))))
		default:
			logger.Warn("Unknown scout provider %q in config, skipping", name)
		}
	}
	return chain
}

// readSeedFile loads the configured static seed list. Missing or unreadable
// files yield an unconfigured provider, not a startup failure.
func readSeedFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Reading seed file %s failed: %v", path, err)
		return ""
	}
	return string(data)
}
