package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/milosgajdos/go-invpend/comms"
	"github.com/milosgajdos/go-invpend/config"
	"github.com/milosgajdos/go-invpend/export"
	"github.com/milosgajdos/go-invpend/matrix"
	"github.com/milosgajdos/go-invpend/model"
	"github.com/milosgajdos/go-invpend/sim"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v3"
)

var (
	// config file path
	configFile string
	// plot file path
	plotFile string
	// CSV export file path
	csvFile string
	// JSON export file path
	jsonFile string
	// force command packets file path
	packetsFile string
	// force command CAN frames file path
	canFile string
	// terminal preview
	preview bool
	// suppress progress logs
	quiet bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "invpend",
		Short:        "inverted pendulum on a cart step response simulator",
		SilenceUsage: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate the closed-loop step response",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&plotFile, "plot", config.DefaultPlot, "state trajectory plot file")
	runCmd.Flags().StringVar(&csvFile, "csv", "", "export trajectory to CSV file")
	runCmd.Flags().StringVar(&jsonFile, "json", "", "export trajectory to JSON file")
	runCmd.Flags().StringVar(&packetsFile, "packets", "", "write force command packets to file")
	runCmd.Flags().StringVar(&canFile, "can", "", "write force command CAN frames to file (candump format)")
	runCmd.Flags().BoolVar(&preview, "preview", false, "preview state trajectory in terminal")
	runCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress progress logs")

	configCmd := &cobra.Command{
		Use:   "config [file]",
		Short: "print default config or write it to file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}

	rootCmd.AddCommand(runCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("invpend: %v", err)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr, "invpend: ", log.Ltime)
	if quiet {
		logger.SetOutput(io.Discard)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	traj, err := model.Simulate()
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	logger.Printf("simulated %d samples, Ts=%v s, r=%v m", traj.Len(), model.Ts, model.Ref)

	if cfg.Plot.File != "" {
		plt, err := sim.NewStatePlot(model.Title, traj.Time, traj.State, model.StateLabels)
		if err != nil {
			return fmt.Errorf("failed to create plot: %w", err)
		}

		w, h := vg.Length(cfg.Plot.Width)*vg.Inch, vg.Length(cfg.Plot.Height)*vg.Inch
		if err := plt.Save(w, h, cfg.Plot.File); err != nil {
			return fmt.Errorf("failed to save plot: %w", err)
		}
		logger.Printf("plot saved to %s", cfg.Plot.File)
	}

	if cfg.Export.CSV != "" {
		if err := export.SaveCSV(cfg.Export.CSV, traj); err != nil {
			return err
		}
		logger.Printf("trajectory exported to %s", cfg.Export.CSV)
	}

	if cfg.Export.JSON != "" {
		if err := export.SaveJSON(cfg.Export.JSON, traj); err != nil {
			return err
		}
		logger.Printf("trajectory exported to %s", cfg.Export.JSON)
	}

	if cfg.Export.Packets != "" {
		if err := savePackets(cfg.Export.Packets, traj); err != nil {
			return err
		}
		logger.Printf("force commands written to %s", cfg.Export.Packets)
	}

	if cfg.Export.CAN != "" {
		if err := saveFrames(cfg.Export.CAN, traj); err != nil {
			return err
		}
		logger.Printf("force command frames written to %s", cfg.Export.CAN)
	}

	if cfg.Preview.Enabled {
		fmt.Println(renderPreview(traj, cfg.Preview))
	}

	summary, err := renderSummary(traj)
	if err != nil {
		return err
	}
	fmt.Println(summary)

	return nil
}

// loadConfig loads config file if given and overrides its values with explicitly set flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("plot") {
		cfg.Plot.File = plotFile
	}
	if flags.Changed("csv") {
		cfg.Export.CSV = csvFile
	}
	if flags.Changed("json") {
		cfg.Export.JSON = jsonFile
	}
	if flags.Changed("packets") {
		cfg.Export.Packets = packetsFile
	}
	if flags.Changed("can") {
		cfg.Export.CAN = canFile
	}
	if flags.Changed("preview") {
		cfg.Preview.Enabled = preview
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func savePackets(path string, traj *sim.Trajectory) error {
	u, err := forces(traj)
	if err != nil {
		return err
	}

	b, err := comms.EncodeInputs(u)
	if err != nil {
		return err
	}

	return os.WriteFile(path, b, 0644)
}

func saveFrames(path string, traj *sim.Trajectory) error {
	u, err := forces(traj)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := comms.WriteForceCmdFrames(f, u); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// forces returns cart force inputs of traj
func forces(traj *sim.Trajectory) ([]float64, error) {
	inputs := matrix.Rows(traj.Input)
	if len(inputs) == 0 {
		return nil, fmt.Errorf("trajectory has no inputs")
	}

	return inputs[0], nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if len(args) == 1 {
		return config.Save(args[0], cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
