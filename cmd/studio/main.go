// Command studio is an interactive terminal for generating images from text
// prompts. Plain input lines are prompts; lines starting with "/" are
// commands (type /help).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/hjstudio/imagegen"
	"github.com/hjstudio/imagegen/internal/config"
	"github.com/hjstudio/imagegen/provider/gemini"
	"github.com/hjstudio/imagegen/session"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	envFile := flag.String("env", ".env", "dotenv file loaded before the environment is read")
	flag.Parse()

	if err := run(*configPath, *envFile); err != nil {
		fmt.Fprintln(os.Stderr, "studio:", err)
		os.Exit(1)
	}
}

func run(configPath, envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	provider := gemini.New(&imagegen.ProviderConfig{
		Provider: imagegen.ProviderGeminiAPI,
		APIKey:   cfg.APIKey,
	}).SetLogger(logger)

	manager := imagegen.NewManager(provider,
		imagegen.WithLogger(logger),
		imagegen.WithDefaultModel(imagegen.Model(cfg.Model)),
	)
	defer manager.Close()

	if _, ok := manager.GetModelInfo(imagegen.Model(cfg.Model)); !ok {
		return fmt.Errorf("unknown model %q", cfg.Model)
	}

	opts := []session.Option{
		session.WithModel(imagegen.Model(cfg.Model)),
		session.WithTimeout(cfg.Timeout),
		session.WithLogger(logger),
		session.WithObserver(progressObserver(os.Stdout)),
	}
	if cfg.WaitOnRateLimit > 0 {
		opts = append(opts, session.WithWaitOnRateLimit(cfg.WaitOnRateLimit))
	}
	ctrl := session.NewController(manager, opts...)

	r := newREPL(ctrl, imagegen.NewDirStorage(cfg.OutputDir), os.Stdout)
	r.params.AspectRatio = cfg.Ratio()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	go func() {
		for range sigs {
			if ctrl.Cancel() {
				continue
			}
			fmt.Fprintln(os.Stdout)
			manager.Close()
			os.Exit(130)
		}
	}()

	logger.Debug("studio ready", "model", cfg.Model, "output_dir", cfg.OutputDir)
	return r.run(context.Background(), os.Stdin)
}
