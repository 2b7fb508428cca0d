package bootstrap

import (
	"context"
	"fmt"

	"pm-assistant-be/internal/config"
	"pm-assistant-be/internal/controller"
	"pm-assistant-be/internal/pkg/logger"
	"pm-assistant-be/internal/pkg/mailer"
	"pm-assistant-be/internal/pkg/metrics"
	"pm-assistant-be/internal/repository/cache"
	"pm-assistant-be/internal/repository/contract"
	"pm-assistant-be/internal/repository/memory"
	"pm-assistant-be/internal/service"
	"pm-assistant-be/internal/websocket"
	"pm-assistant-be/pkg/llm"
	"pm-assistant-be/pkg/llm/factory"

	pktNats "pm-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const EventTopic = "pm.events"

type Container struct {
	Logger logger.ILogger

	// Controllers
	SessionController controller.SessionController
	WizardController  controller.WizardController
	ChatController    controller.ChatController

	// WebSockets
	ChatStreamHandler fiber.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []func() error
}

// NewContainer wires everything from cfg. Only LLM provider construction is fatal;
// NATS is optional and Redis is only required when SESSION_STORE=redis.
func NewContainer(ctx context.Context, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}

	// 1. Session storage
	sessions, err := c.newSessionRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// 2. LLM
	rawProvider, err := factory.NewLLMProvider(ctx, factory.Params{
		Provider:      cfg.Ai.LLMProvider,
		Model:         cfg.Ai.LLMModel,
		GeminiAPIKey:  cfg.Keys.GoogleGemini,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		Timeout:       cfg.Ai.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	var llmProvider llm.LLMProvider = metrics.InstrumentLLM(rawProvider, sysLogger)
	sysLogger.Info("Bootstrap", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 3. Mail
	emailService := mailer.NewEmailService(cfg.SMTP, sysLogger)
	if !cfg.SMTP.Configured() {
		sysLogger.Warn("Bootstrap", "SMTP is not fully configured, submission mails will fail", nil)
	}

	// 4. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermillLogger)
	c.closers = append(c.closers, pubSub.Close)

	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "NATS unavailable, events stay in-process", map[string]interface{}{"error": err})
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, func() error { natsPub.Close(); return nil })
		}
	}

	publisherService := service.NewPublisherService(EventTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, EventTopic, forwarder, sysLogger)

	// 5. Services
	sessionLocks := service.NewSessionLocks()
	wizardService := service.NewWizardService(
		sessions,
		llmProvider,
		emailService,
		publisherService,
		service.ModelSettings{
			Temperature:    cfg.Ai.Temperature,
			ShortMaxTokens: cfg.Ai.ShortMaxTokens,
		},
		sessionLocks,
		sysLogger,
	)
	chatLogger := logger.NewIsolatedLogger("logs/chat.log")
	c.closers = append(c.closers, chatLogger.Sync)
	chatService := service.NewChatService(
		sessions,
		llmProvider,
		cfg.Ai.Temperature,
		cfg.Chat.CharDelay,
		sessionLocks,
		sysLogger,
		chatLogger,
	)

	// 6. Controllers
	c.SessionController = controller.NewSessionController(wizardService)
	c.WizardController = controller.NewWizardController(wizardService)
	c.ChatController = controller.NewChatController(chatService)
	c.ChatStreamHandler = websocket.NewChatStreamHandler(chatService, sysLogger)

	return c, nil
}

func (c *Container) newSessionRepository(ctx context.Context, cfg *config.Config) (contract.SessionRepository, error) {
	if cfg.Session.Store != "redis" {
		c.Logger.Info("Bootstrap", "Using in-memory session store", nil)
		return memory.NewSessionRepository(cfg.Session.TTL), nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		c.Logger.Warn("Bootstrap", "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	c.closers = append(c.closers, rdb.Close)
	c.Logger.Info("Bootstrap", "Using Redis session store", nil)
	return cache.NewRedisSessionRepository(rdb, cfg.Session.TTL), nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("Bootstrap", "Close failed", map[string]interface{}{"error": err})
		}
	}
}
