package protocal

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"repost-bridge/configs"
	discordAdapter "repost-bridge/internal/adapters/input/discord"
	httpAdapter "repost-bridge/internal/adapters/input/http"
	"repost-bridge/internal/adapters/output/fetch"
	lineAdapter "repost-bridge/internal/adapters/output/line"
	"repost-bridge/internal/adapters/output/mastodon"
	"repost-bridge/internal/adapters/output/memory"
	"repost-bridge/internal/adapters/output/postgres"
	"repost-bridge/internal/adapters/output/sqlite"
	"repost-bridge/internal/application"
	"repost-bridge/internal/ports/output"
	"repost-bridge/pkg/database_driver/gorm"

	swagger "github.com/arsmn/fiber-swagger/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
)

// Defaults applied to zero config values
const (
	defaultDraftTimeout   = 30 * time.Minute
	defaultMaxAttachments = 4
	defaultSqlitePath     = "./repost-bridge.db"
)

type config struct {
	ENV string `mapstructure:"env"`
}

// ServeHTTP func
func ServeHTTP() error {
	app := fiber.New()
	var cfg config
	flag.StringVar(&cfg.ENV, "env", "", "the environment to use")
	flag.Parse()
	configs.InitViper("./configs", cfg.ENV)
	conf := configs.GetViper()
	logrus.Info(conf.Env)
	if conf.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept,Authorization",
	}))

	// Wire up the hexagonal architecture layers
	// Output adapters (stores)
	records, closeRecords, err := newUserRecordStore(conf)
	if err != nil {
		return err
	}
	states := memory.NewLoginStateStore(conf.OAuth.StateCapacity)

	// Output adapters (remote APIs)
	mastodonClient, err := mastodon.NewMastodonClientAdapter(conf.Mastodon)
	if err != nil {
		return err
	}
	httpFetcher := fetch.NewHTTPFetcher(conf.Repost.FetchTimeout)
	var fetcher output.AttachmentFetcher = httpFetcher
	if conf.Line.Enabled {
		fetcher, err = lineAdapter.NewContentFetcher(conf.Line.ChannelToken, httpFetcher)
		if err != nil {
			return err
		}
	}

	// Application services (use cases)
	redirectURI := fmt.Sprintf("https://%s/oauth_callback", conf.App.PublicHost)
	logrus.Infof("OAuth redirect URI: %s", redirectURI)
	oauthSrv := application.NewOAuthService(mastodonClient, states, records, redirectURI)
	repostSrv := application.NewRepostService(mastodonClient, records, fetcher, application.RepostConfig{
		MaxConcurrentUploads: conf.Repost.MaxConcurrentUploads,
		PollInterval:         time.Duration(conf.Repost.PollInterval) * time.Millisecond,
		MaxPolls:             conf.Repost.MaxPolls,
		TempDir:              conf.Repost.TempDir,
	})
	commandSrv := application.NewChatCommandService(oauthSrv, repostSrv, records)

	// Input adapter (HTTP handler)
	hdl := httpAdapter.New(oauthSrv, records, states)
	app.Get("/swagger/*", swagger.HandlerDefault) // default
	app.Get("/health", hdl.HealthCheck)
	app.Get("/oauth_callback", hdl.OAuthCallback)

	// Wire up LINE hexagonal architecture
	var lineWebhookSrv *application.LineWebhookService
	if conf.Line.Enabled {
		// Output adapter (LINE client)
		lineClient, err := lineAdapter.NewLineClientAdapter(conf.Line.ChannelToken)
		if err != nil {
			return fmt.Errorf("failed to create LINE client: %w", err)
		}

		draftTimeout := time.Duration(conf.Line.DraftTimeout) * time.Minute
		if conf.Line.DraftTimeout <= 0 {
			draftTimeout = defaultDraftTimeout
		}
		maxAttachments := conf.Line.MaxAttachments
		if maxAttachments <= 0 {
			maxAttachments = defaultMaxAttachments
		}
		draftStore := memory.NewMemoryDraftStore(draftTimeout, maxAttachments)

		// Application service (LINE webhook use case)
		lineWebhookSrv = application.NewLineWebhookService(lineClient, commandSrv, draftStore)
		// Input adapter (LINE webhook handler)
		lineWebhookHdl := httpAdapter.NewLineWebhookHandler(lineWebhookSrv, conf.Line.ChannelSecret)

		webhook := app.Group("/webhook")
		{
			webhook.Post("/line", lineWebhookHdl.HandleWebhook)
		}
	}

	// Input adapter (Discord gateway)
	var gateway *discordAdapter.Gateway
	if conf.Discord.Enabled {
		gateway, err = discordAdapter.NewGateway(conf.Discord.Token, commandSrv)
		if err != nil {
			return err
		}
		if err := gateway.Open(); err != nil {
			return err
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		for range c {
			log.Println("Gracefull shut down ...")
			if gateway != nil {
				if err := gateway.Close(); err != nil {
					log.Println("Error when closing discord gateway: ", err)
				}
				gateway.Wait()
			}
			err := app.Shutdown()
			if err != nil {
				log.Println("Error when shutdown server: ", err)
			}
			if lineWebhookSrv != nil {
				lineWebhookSrv.Wait()
			}
			closeRecords()
		}
	}()

	logrus.Println("Listerning on port: ", conf.App.Port)
	err = app.Listen(":" + conf.App.Port)
	if err != nil {
		return err
	}

	return nil
}

// newUserRecordStore opens the user record store selected by storage.driver
func newUserRecordStore(conf *configs.Config) (output.UserRecordStore, func(), error) {
	switch conf.Storage.Driver {
	case "postgres":
		dbConGorm, err := gorm.ConnectToPostgreSQL(conf.Postgres, conf.App.Debug)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewUserRecordRepository(dbConGorm.Postgres), func() {
			gorm.DisconnectPostgres(dbConGorm.Postgres)
		}, nil

	case "sqlite", "":
		path := conf.Sqlite.Path
		if path == "" {
			path = defaultSqlitePath
		}
		repo, err := sqlite.NewUserRecordRepository(path)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				logrus.Error(err)
			}
		}, nil

	case "memory":
		logrus.Warn("Using in-memory user records, logins are lost on restart")
		return memory.NewMemoryUserRecordStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %s", conf.Storage.Driver)
	}
}
