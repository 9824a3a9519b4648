package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/0xcro3dile/docinsight-go/internal/adapters/docservice"
	"github.com/0xcro3dile/docinsight-go/internal/adapters/filewatcher"
	"github.com/0xcro3dile/docinsight-go/internal/adapters/loader"
	"github.com/0xcro3dile/docinsight-go/internal/config"
	"github.com/0xcro3dile/docinsight-go/internal/domain/usecases"
	"github.com/0xcro3dile/docinsight-go/internal/infrastructure/cli"
	"github.com/0xcro3dile/docinsight-go/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	apiURL := flag.String("api", "", "document service base URL (overrides config)")
	watchDir := flag.String("watch", "", "stage files dropped into this directory")
	flag.Parse()

	// 1. Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}
	if *watchDir != "" {
		cfg.Watch.Dir = *watchDir
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// 2. Logging
	log := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		FilePath: cfg.Log.FilePath,
		IsProd:   cfg.IsProd(),
		Console:  os.Stderr,
	})
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Adapters
	client := docservice.NewClient(cfg.API.BaseURL,
		docservice.WithTimeout(cfg.API.Timeout()),
		docservice.WithLogger(log),
	)
	files := loader.NewFileLoader(0)
	in := cli.NewLineReader(os.Stdin)

	// 4. Usecases
	docs := usecases.NewDocumentSessionUseCase(client, files, cli.NewConfirmer(in, os.Stdout), log)
	chat := usecases.NewConversationUseCase(client, docs, log)

	// 5. Presenter
	repl := cli.NewREPL(docs, chat, client, in, os.Stdout, log)

	if cfg.Watch.Dir != "" {
		watcher, err := filewatcher.NewFSNotifyWatcher(files.SupportedExtensions(), cfg.Watch.Debounce(), log)
		if err != nil {
			log.Fatal("creating drop folder watcher", zap.Error(err))
		}
		defer watcher.Stop()
		if err := repl.Watch(ctx, watcher, cfg.Watch.Dir); err != nil {
			log.Fatal("starting drop folder watcher", zap.Error(err))
		}
	}

	log.Info("docinsight starting", zap.String("api", client.BaseURL()), zap.String("env", cfg.Environment))

	if err := repl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("session ended", zap.Error(err))
	}
}
