// Command ragapp indexes documents and answers questions about them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Hmv123/RAG-Application/internal/adapters/driven/ai"
	"github.com/Hmv123/RAG-Application/internal/adapters/driven/config/file"
	"github.com/Hmv123/RAG-Application/internal/adapters/driving/cli"
	"github.com/Hmv123/RAG-Application/internal/app"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
	"github.com/Hmv123/RAG-Application/internal/core/services"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = ""

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore(os.Getenv("RAGAPP_HOME"))
	if err != nil {
		return err
	}

	prompts, err := file.NewPromptStore(
		filepath.Join(filepath.Dir(configStore.Path()), file.PromptDirName),
		map[string]string{driven.PromptAnswerSystem: services.DefaultSystemPrompt},
	)
	if err != nil {
		return err
	}

	cli.SetVersion(version)
	cli.SetDependencies(cli.Dependencies{
		Settings:   services.NewSettingsService(configStore, ai.Probe{}),
		ConfigPath: configStore.Path(),
		Build:      app.Builder{Prompts: prompts}.Build,
	})

	return cli.Execute(ctx)
}
