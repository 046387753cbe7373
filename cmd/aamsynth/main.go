package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrgloom/menpofit/internal/demo"
	"github.com/mrgloom/menpofit/pkg/config"
	"github.com/mrgloom/menpofit/pkg/export"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "", "YAML configuration file (optional)")
	outputDir := flag.String("output", "", "Output directory (overrides config)")
	level := flag.Int("level", -1, "Pyramid level to synthesize at (-1 = finest)")
	nRandom := flag.Int("random", -1, "Number of random instances to render (overrides config)")
	seed := flag.Int64("seed", 0, "Random seed (0 = time-seeded)")
	patchBased := flag.Bool("patch", false, "Use the patch-based model variant")
	writeConfig := flag.Bool("write-config", false, "Write the default config to the -config path and exit")
	flag.Parse()

	if *writeConfig {
		if *configPath == "" {
			log.Fatal("-write-config requires -config")
		}
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *nRandom >= 0 {
		cfg.Synthesis.NRandom = *nRandom
	}
	if *seed != 0 {
		cfg.Synthesis.Seed = *seed
	}
	cfg.Synthesis.Level = *level
	if *patchBased {
		cfg.Model.PatchBased = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	model, err := demo.Build(demo.Params{
		Levels:      cfg.Model.Levels,
		Downscale:   cfg.Model.Downscale,
		PatchBased:  cfg.Model.PatchBased,
		PatchHeight: cfg.Model.PatchHeight,
		PatchWidth:  cfg.Model.PatchWidth,
	})
	if err != nil {
		log.Fatalf("Failed to build model: %v", err)
	}

	if cfg.Output.Verbose {
		fmt.Println(model)
	}

	// Mean instance
	mean, err := model.Instance(nil, nil, cfg.Synthesis.Level)
	if err != nil {
		log.Fatalf("Failed to synthesize mean instance: %v", err)
	}
	meanPath := filepath.Join(cfg.Output.Dir, "mean."+cfg.Output.Format)
	if err := export.Save(mean, meanPath); err != nil {
		log.Fatalf("Failed to save mean instance: %v", err)
	}
	fmt.Printf("Mean instance saved to %s\n", meanPath)

	// Random instances, rendered in parallel. Each worker gets its own
	// deterministic source so -seed reproduces the batch regardless of
	// scheduling.
	if cfg.Synthesis.NRandom > 0 {
		baseSeed := cfg.Synthesis.Seed
		if baseSeed == 0 {
			baseSeed = time.Now().UnixNano()
		}
		start := time.Now()

		var g errgroup.Group
		for i := 0; i < cfg.Synthesis.NRandom; i++ {
			i := i
			g.Go(func() error {
				rng := rand.New(rand.NewSource(baseSeed + int64(i)))
				instance, err := model.RandomInstance(rng, cfg.Synthesis.Level)
				if err != nil {
					return fmt.Errorf("random instance %d: %w", i, err)
				}
				path := filepath.Join(cfg.Output.Dir,
					fmt.Sprintf("random_%02d.%s", i, cfg.Output.Format))
				return export.Save(instance, path)
			})
		}
		if err := g.Wait(); err != nil {
			log.Fatalf("Failed to render random instances: %v", err)
		}
		fmt.Printf("%d random instances rendered in %.2f seconds\n",
			cfg.Synthesis.NRandom, time.Since(start).Seconds())
	}

	// Mode sequences for the first shape and appearance components.
	sweep := cfg.Synthesis.ModeRange
	shapeDir := filepath.Join(cfg.Output.Dir, "shape_modes")
	if err := export.SaveModeSequence(model, export.ShapeMode, cfg.Synthesis.Level, 0,
		-sweep, sweep, cfg.Synthesis.ModeSteps, shapeDir); err != nil {
		log.Fatalf("Failed to render shape mode sequence: %v", err)
	}
	appearanceDir := filepath.Join(cfg.Output.Dir, "appearance_modes")
	if err := export.SaveModeSequence(model, export.AppearanceMode, cfg.Synthesis.Level, 0,
		-sweep, sweep, cfg.Synthesis.ModeSteps, appearanceDir); err != nil {
		log.Fatalf("Failed to render appearance mode sequence: %v", err)
	}

	if cfg.Output.Verbose {
		fmt.Println("\nOutput written to:")
		fmt.Printf("  %s\n", cfg.Output.Dir)
		fmt.Println("  - mean instance")
		fmt.Println("  - random instances")
		fmt.Println("  - shape_modes: first shape component sweep")
		fmt.Println("  - appearance_modes: first appearance component sweep")
	}
}
