package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fillcast/fillcast/forecast"
	"github.com/fillcast/fillcast/forecast/capacity"
	"github.com/fillcast/fillcast/forecast/scenario"
)

var (
	scenarioPath  string // Scenario YAML describing the requisition and its history
	seedString    string // Seed string folded into the derived simulation key
	iterations    int    // Monte Carlo iteration count (0 = scenario value or default)
	lookbackWeeks int    // Capacity inference lookback window length
	minSampleSize int    // Observation count below which duration fits fall back to constant
	priorWeight   int    // Virtual sample size of the prior for rate shrinkage
	fallbackDays  int    // Constant dwell substituted for unstable duration fits
	logLevel      string // Log verbosity level
	noColor       bool   // Disable color in table output
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "fillcast",
	Short: "Fill-date forecasting for open hiring requisitions",
	Long: `fillcast turns sparse historical recruiting data into a calibrated
probability distribution over requisition fill dates, and quantifies how much
an overloaded recruiter or hiring manager will delay that date.`,
}

// runCmd executes a pipeline-only and a capacity-aware forecast for one
// scenario file.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a forecast for a scenario file",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(viper.GetString("log"))
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", viper.GetString("log"))
		}
		logrus.SetLevel(level)

		path := viper.GetString("scenario")
		if path == "" {
			logrus.Fatalf("No scenario file provided. Use --scenario.")
		}

		spec, err := scenario.Load(path)
		if err != nil {
			logrus.Fatalf("Loading scenario: %v", err)
		}

		params, err := scenario.BuildParameters(spec, scenario.BuildOptions{
			PriorWeight:   viper.GetInt("prior-weight"),
			MinSampleSize: viper.GetInt("min-n"),
			FallbackDays:  viper.GetInt("fallback-days"),
		})
		if err != nil {
			logrus.Fatalf("Building simulation parameters: %v", err)
		}

		iters := viper.GetInt("iterations")
		if iters == 0 {
			iters = spec.Iterations
		}
		if iters == 0 {
			iters = forecast.DefaultIterations
		}
		seedStr := viper.GetString("seed")
		if seedStr == "" {
			seedStr = spec.Seed
		}

		candidates := spec.PipelineCandidates()
		seed := forecast.DeriveSimulationKey(spec.RequisitionID, candidates, forecast.Adjustments{}, seedStr)

		logrus.Infof("Forecasting %s: %d candidates, %d iterations, seed=%d",
			spec.RequisitionID, len(candidates), iters, seed)
		startTime := time.Now()

		data := spec.Dataset()
		owners := spec.CapacityOwners()
		window := capacity.LookbackWindow(spec.StartDate, viper.GetInt("lookback-weeks"))

		profiles, err := capacity.InferProfiles(owners, window, data)
		if err != nil {
			logrus.Warnf("Capacity inference unavailable: %v", err)
			profiles = nil
		}
		demand := capacity.ComputeGlobalDemand(owners, data)

		result, err := capacity.RunCapacityAwareForecast(candidates, demand, params, profiles, spec.StartDate, seed, iters)
		if err != nil {
			logrus.Fatalf("Forecast failed: %v", err)
		}

		if err := writeForecastReport(os.Stdout, spec.RequisitionID, result, !viper.GetBool("no-color")); err != nil {
			logrus.Fatalf("Writing report: %v", err)
		}
		logrus.Infof("Forecast complete in %v.", time.Since(startTime))
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig binds a .fillcast.yaml config file and FILLCAST_* env vars under
// the CLI flags.
func initConfig() {
	viper.SetConfigName(".fillcast")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")

	viper.SetEnvPrefix("FILLCAST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logrus.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}
}

// init sets up CLI flags and subcommands
func init() {
	cobra.OnInitialize(initConfig)

	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to the scenario YAML file")
	runCmd.Flags().StringVar(&seedString, "seed", "", "Seed string (defaults to the scenario's seed)")
	runCmd.Flags().IntVar(&iterations, "iterations", 0, "Monte Carlo iterations (0 = scenario value or built-in default)")
	runCmd.Flags().IntVar(&lookbackWeeks, "lookback-weeks", capacity.DefaultLookbackWeeks, "Capacity inference lookback window in weeks")
	runCmd.Flags().IntVar(&minSampleSize, "min-n", forecast.DefaultMinSampleSize, "Minimum observations before trusting a fitted duration")
	runCmd.Flags().IntVar(&priorWeight, "prior-weight", scenario.DefaultPriorWeight, "Virtual sample size of the prior for rate shrinkage")
	runCmd.Flags().IntVar(&fallbackDays, "fallback-days", scenario.DefaultFallbackDays, "Constant dwell (days) substituted for unstable duration fits")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color in table output")

	if err := viper.BindPFlags(runCmd.Flags()); err != nil {
		logrus.Fatalf("Binding flags: %v", err)
	}

	rootCmd.AddCommand(runCmd)
}
