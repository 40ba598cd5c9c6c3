package bootstrap

import (
	"context"
	"time"

	"voice-assistant-be/internal/config"
	"voice-assistant-be/internal/controller"
	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/internal/service"
	"voice-assistant-be/internal/websocket"
	"voice-assistant-be/pkg/ai/router"
	"voice-assistant-be/pkg/calc"
	"voice-assistant-be/pkg/intent"
	"voice-assistant-be/pkg/knowledge"
	"voice-assistant-be/pkg/knowledge/duckduckgo"
	"voice-assistant-be/pkg/knowledge/wikipedia"
	pktNats "voice-assistant-be/pkg/nats"
	"voice-assistant-be/pkg/responses"
	"voice-assistant-be/pkg/session"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Engine is the assistant without any transport: enough for the CLI.
type Engine struct {
	ChatService service.IChatService
	Store       *session.Store
	Logger      logger.ILogger
}

type Container struct {
	*Engine

	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub

	closers []func()
}

// NewEngine wires classifier, knowledge chain, router and session store.
// rdb, publisher and notifier may be nil.
func NewEngine(
	cfg *config.Config,
	sysLogger logger.ILogger,
	rdb *redis.Client,
	publisher service.IPublisherService,
	notifier service.SessionNotifier,
) *Engine {
	// 1. Response table and classifier
	corpus, err := responses.Load(cfg.Assistant.IntentsFile)
	if err != nil {
		sysLogger.Warn("INTENT", "Intents file not loaded, running without canned replies", map[string]interface{}{
			"path":  cfg.Assistant.IntentsFile,
			"error": err.Error(),
		})
		corpus = &responses.Corpus{Table: responses.Table{}}
	}

	baseURL, model, apiKey := cfg.Assistant.LLMEndpoint()
	classifier, err := intent.NewFromConfig(intent.FactoryConfig{
		Provider: cfg.Assistant.ClassifierProvider,
		MinScore: cfg.Assistant.ClassifierMinScore,
		BaseURL:  baseURL,
		Model:    model,
		APIKey:   apiKey,
		Timeout:  cfg.Assistant.LLMTimeout,
	}, corpus)
	if err != nil {
		sysLogger.Warn("INTENT", "Classifier unavailable, intent will always be absent", map[string]interface{}{"error": err.Error()})
		classifier = nil
	}
	sysLogger.Info("INTENT", "Classifier configured", map[string]interface{}{
		"provider": cfg.Assistant.ClassifierProvider,
		"enabled":  classifier != nil,
		"labels":   corpus.Table.Labels(),
	})

	// 2. Knowledge chain
	var cache knowledge.Cache = knowledge.NewMemoryCache(cfg.Knowledge.CacheTTL)
	if rdb != nil {
		cache = knowledge.NewTieredCache(cache, knowledge.NewRedisCache(rdb, cfg.Knowledge.CacheTTL, sysLogger))
	}

	chain := knowledge.NewChain(
		wikipedia.NewProvider(cfg.Knowledge.WikipediaBaseURL, cfg.Knowledge.UserAgent),
		duckduckgo.NewProvider(cfg.Knowledge.SearchBaseURL, cfg.Knowledge.UserAgent, cfg.Knowledge.SearchRatePerSec),
		cache,
		knowledge.Config{
			Timeout:    cfg.Knowledge.Timeout,
			Sentences:  cfg.Knowledge.WikipediaSentences,
			Region:     cfg.Knowledge.SearchRegion,
			Safety:     knowledge.ParseSafety(cfg.Knowledge.SearchSafety),
			MaxResults: cfg.Knowledge.SearchMaxResults,
		},
		sysLogger,
	)

	// 3. Router and session store
	r := router.NewRouter(chain, calc.NewEvaluator(), responses.NewPicker(corpus.Table, nil), sysLogger)
	store := session.NewStore()

	return &Engine{
		ChatService: service.NewChatService(store, intent.Safe(classifier, sysLogger), r, publisher, notifier, sysLogger),
		Store:       store,
		Logger:      sysLogger,
	}
}

func NewContainer(cfg *config.Config, sysLogger logger.ILogger) *Container {
	c := &Container{}

	// 1. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })
	publisherService := service.NewPublisherService(cfg.App.EventsTopic, pubSub)

	// 2. Optional NATS forwarding
	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(context.Background(), cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("EVENTS", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.EventsTopic, forwarder, sysLogger)

	// 3. Redis (optional): shared answer cache and websocket fan-out
	rdb := ConnectRedis(cfg.App.RedisURL, sysLogger)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// 4. Engine, with the websocket hub as session notifier
	c.WebSocketHub = websocket.NewHub(rdb, uuid.NewString(), sysLogger)
	c.Engine = NewEngine(cfg, sysLogger, rdb, publisherService, c.WebSocketHub)

	// 5. Controllers
	c.ChatController = controller.NewChatController(c.ChatService)
	return c
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

// ConnectRedis returns nil when url is empty or the server does not answer a ping.
func ConnectRedis(url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("SESSION", "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("SESSION", "Redis unreachable, continuing without it", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}
