package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"walletbot/config"
	"walletbot/internal/adapter/feishu"
	"walletbot/internal/adapter/rest"
	"walletbot/internal/agent"
	"walletbot/internal/core"
	"walletbot/internal/dataservice"
	"walletbot/internal/llm"
)

func main() {
	// 1. Init Config
	config.Init()
	cfg := config.AppConfig

	// 2. Init Logger
	logger := newLogger(cfg.Server.LogFormat)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Init Backend Store
	store, err := dataservice.OpenStore(ctx, cfg.Backend)
	if err != nil {
		logger.Fatal("Failed to open backend store", zap.String("driver", cfg.Backend.Driver), zap.Error(err))
	}
	defer store.Close()

	// 4. Init LLM + Speech
	llmProvider := llm.NewOpenAIProvider(cfg.LLM)
	speech := llm.NewSpeechClient(cfg.LLM)

	// 5. Init Agents
	fetcher := dataservice.NewFetcher(store)
	chatAgent := agent.NewChatAgent(llmProvider, fetcher, cfg.LLM.TextPersona, logger.Named("chat"))
	voiceAgent := agent.NewVoiceAgent(chatAgent, speech, speech, agent.VoiceOptions{
		Language: cfg.LLM.STTLanguage,
		Voice:    cfg.LLM.TTSVoice,
		Format:   cfg.LLM.TTSFormat,
		Persona:  cfg.LLM.VoicePersona,
	}, logger.Named("voice"))

	// 6. Init Dispatcher
	dispatcher := core.NewDispatcher(core.StaticResolver{AccountID: cfg.Account.DefaultAccountID}, logger)
	dispatcher.RegisterAgent(chatAgent)

	// 7. Init Adapters

	// 7.1 Feishu Adapter (WebSocket Mode), optional
	if cfg.Feishu.Enabled() {
		feishuAdapter := feishu.NewAdapter(cfg.Feishu, dispatcher, logger.Named("feishu"))
		go func() {
			if err := feishuAdapter.StartWS(ctx); err != nil {
				logger.Error("Failed to start Feishu WS", zap.Error(err))
			}
		}()
	}

	// 7.2 REST API Adapter, blocks until SIGINT/SIGTERM
	restAdapter := rest.NewAdapter(cfg.Server.Port, dispatcher, voiceAgent, logger.Named("rest"))
	if err := restAdapter.Start(ctx); err != nil {
		logger.Fatal("REST Server failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func newLogger(format string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if format == "json" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Unable to init logger: %v", err)
	}
	return logger
}
