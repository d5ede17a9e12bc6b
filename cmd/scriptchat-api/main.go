package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"scriptchat/internal/adapters/auth"
	"scriptchat/internal/adapters/docs"
	httpadapter "scriptchat/internal/adapters/http"
	"scriptchat/internal/adapters/llm"
	firestorestore "scriptchat/internal/adapters/storage/firestore"
	memstore "scriptchat/internal/adapters/storage/memory"
	"scriptchat/internal/app/assemble"
	"scriptchat/internal/app/message"
	"scriptchat/internal/app/mode"
	"scriptchat/internal/app/session"
	"scriptchat/internal/app/turn"
	"scriptchat/internal/config"
	"scriptchat/internal/domain"
	"scriptchat/internal/observability"
)

func main() {
	ctx := context.Background()
	logger := observability.Logger()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load(logger)

	// Generator: mock for dev, Gemini otherwise
	var (
		generator domain.Generator
		err       error
	)
	if cfg.UseMockLLM || cfg.GeminiAPIKey == "" {
		logger.Info("using mock LLM client")
		generator = llm.NewMockLLM()
	} else {
		generator, err = llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.ModelName)
		if err != nil {
			logger.Error("initializing gemini client", "error", err)
			os.Exit(1)
		}
	}

	// Mode decision: persistent (Firestore) or demo (in-memory), once.
	controller := mode.NewController(mode.Deps{
		NewAuthenticator: func(ctx context.Context, fb *config.FirebaseConfig) (domain.Authenticator, error) {
			return auth.NewFirebase(ctx, fb.ProjectID, fb.ServiceAccount)
		},
		NewPersistent: func(ctx context.Context, fb *config.FirebaseConfig) (domain.Strategy, error) {
			return firestorestore.NewStore(ctx, fb.ProjectID, cfg.Namespace, fb.ServiceAccount,
				observability.Component("firestore"))
		},
		NewDemo:   func() domain.Strategy { return memstore.NewStore() },
		AuthToken: cfg.AuthToken,
	}, logger)

	res := controller.Initialize(ctx, cfg.Firebase)
	logger.Info("initialized", "mode", res.Mode)

	// Static reference documentation; failures degrade to placeholders.
	ref := assemble.LoadReference(ctx, docs.NewLoader(), cfg.DocsResource, cfg.ExampleResources, logger)
	assembler := assemble.New(generator, ref, logger)

	// Session store and message log share the chosen strategy.
	msgLog := message.NewLog(res.Strategy, observability.Component("message-log"))
	msgLog.SetIdentity(res.Identity)

	sessions := session.NewStore(res.Strategy, res.Identity, observability.Component("session-store"))
	sessions.OnCurrentChanged(func(id domain.SessionID) {
		msgLog.SetSession(ctx, id)
	})
	if err := sessions.Start(ctx); err != nil {
		logger.Error("starting session store", "error", err)
		os.Exit(1)
	}
	defer sessions.Stop()
	defer msgLog.Close()

	orch := turn.NewOrchestrator(sessions, msgLog, res.Strategy, assembler, res.Identity, cfg.TurnTimeout, logger)

	handler := httpadapter.NewServer(res.Mode, sessions, msgLog, orch)

	addr := ":" + cfg.Port
	logger.Info("scriptchat API listening", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("http server", "error", err)
		os.Exit(1)
	}
}
