package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"k8s.io/klog/v2"

	"libgenui_server/config"
	"libgenui_server/internal/ai"
	"libgenui_server/internal/llm"
	"libgenui_server/internal/logging"
	"libgenui_server/internal/pipeline"
	"libgenui_server/internal/store"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg          config.Config
	store        store.DocumentStore
	artifacts    *store.ArtifactRepository
	orchestrator *pipeline.Orchestrator
	closeLog     func()
}

// loadEnv reads .env before viper loads config. A missing file is normal
// in production.
func loadEnv() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			klog.Warningf("Error loading .env file: %v", err)
		} else {
			klog.V(1).Info(".env file not found, relying on system environment variables")
		}
		return
	}
	klog.V(1).Info("Loaded environment variables from .env file")
}

func newApp(ctx context.Context, withModel bool) (*app, error) {
	loadEnv()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}

	v := cfg.LogVerbosity
	if verbosity > v {
		v = verbosity
	}
	logWriter, closeLog := logging.Setup(logging.Options{File: cfg.LogFile, Verbosity: v})
	gin.DefaultWriter = logWriter
	gin.DefaultErrorWriter = logWriter

	docs, err := store.New(ctx, cfg.Store())
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("cannot open %s store: %w", cfg.StoreDriver, err)
	}
	a := &app{
		cfg:       cfg,
		store:     docs,
		artifacts: store.NewArtifactRepository(docs, cfg.ArtifactCollection, cfg.ArtifactDocument),
		closeLog:  closeLog,
	}
	if !withModel {
		return a, nil
	}

	if err := cfg.ValidateModel(); err != nil {
		a.close(ctx)
		return nil, err
	}
	model, err := llm.New(ctx, cfg.LLM())
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("cannot create %s model: %w", cfg.ModelProvider, err)
	}
	klog.Infof("Using %s model %s with %s store", cfg.ModelProvider, cfg.ModelName, cfg.StoreDriver)

	generator := ai.NewGenerator(model, cfg.RequiredFileList())
	a.orchestrator = pipeline.NewOrchestrator(generator, a.artifacts, pipeline.Config{RenderPreview: cfg.RenderPreview})
	if c, ok := model.(io.Closer); ok {
		prev := a.closeLog
		a.closeLog = func() {
			_ = c.Close()
			prev()
		}
	}
	return a, nil
}

// close waits for background runs, then releases the store and log file.
func (a *app) close(ctx context.Context) {
	if a.orchestrator != nil {
		a.orchestrator.Wait()
	}
	if err := a.store.Close(ctx); err != nil {
		klog.Warningf("Closing store: %v", err)
	}
	a.closeLog()
}
