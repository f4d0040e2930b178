package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/ntquang/mailreg"
	"github.com/ntquang/mailreg/bolt"
	"github.com/ntquang/mailreg/http"
	"github.com/ntquang/mailreg/rabbitmq"
	"github.com/ntquang/mailreg/registration"
	"github.com/ntquang/mailreg/smtp"
	"github.com/ntquang/mailreg/sqlite"
)

const cleanupTopic = "mailreg.cleanup"

func main() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}

	viper.SetDefault("http.addr", ":8080")
	viper.SetDefault("http.variant", http.VariantDefault)
	viper.SetDefault("mailinglist.activation_days", 7)
	viper.SetDefault("mailinglist.registration_open", true)

	var config *mailreg.Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatal(err)
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn: config.Sentry.DSN,
	}); err != nil {
		log.Fatalf("sentry.Init: %v", err)
	}
	defer sentry.Flush(2 * time.Second)

	a := newApp(config)

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		cancel()
	}()

	if err := a.Run(ctx); err != nil {
		_ = a.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	<-ctx.Done()

	if err := a.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	config     *mailreg.Config
	db         mailreg.Database
	httpServer *http.Server
	mail       mailreg.MailService
	cron       *cron.Cron
}

func newApp(config *mailreg.Config) *app {
	httpServer, err := http.NewServer(config.HTTP.Variant, config.Mailinglist.Flash.Secret)
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
	return &app{
		config:     config,
		httpServer: httpServer,
	}
}

func (a *app) Run(ctx context.Context) error {
	var (
		subscribers mailreg.SubscriberService
		profiles    mailreg.ProfileService
	)
	switch a.config.DB.Type {
	case "sqlite":
		db := sqlite.NewDB(a.config.DB.Path)
		if err := db.Open(); err != nil {
			return err
		}
		a.db = db
		subscribers = sqlite.NewSubscriberService(db)
		profiles = sqlite.NewProfileService(db)
	default:
		db := bolt.NewDB(a.config.DB.Path)
		if err := db.Open(); err != nil {
			return err
		}
		a.db = db
		subscribers = bolt.NewSubscriberService(db)
		profiles = bolt.NewProfileService(db)
	}

	a.httpServer.Addr = a.config.HTTP.Addr

	if err := a.httpServer.Open(); err != nil {
		return err
	}

	a.mail = smtp.NewMailService(a.config, a.httpServer.URL())

	svc := registration.NewService(subscribers, profiles, a.mail, a.config)
	svc.AddListener(smtp.ManagerNotices(a.mail))

	a.httpServer.ActivationService = svc
	a.httpServer.AdminSecret = a.config.Mailinglist.Admin.Secret

	switch a.config.HTTP.Variant {
	case http.VariantSimple:
		a.httpServer.Backend = registration.NewOneStep(svc)
	case http.VariantMessages:
		a.httpServer.Backend = registration.NewFlash(svc)
	default:
		a.httpServer.Backend = registration.NewDoubleOptIn(svc)
	}

	if spec := a.config.Mailinglist.Cleanup.Cron.Spec; spec != "" {
		a.cron = cron.New()
		if _, err := a.cron.AddFunc(spec, func() {
			if err := svc.DeleteExpiredSubscribers(); err != nil {
				sentry.CaptureException(err)
				log.Printf("cleanup: %v", err)
			}
		}); err != nil {
			return err
		}
		a.cron.Start()
	}

	if url := a.config.AMQP.URL; url != "" {
		var queue mailreg.QueueService
		queue, err := rabbitmq.NewQueueService(url)
		if err != nil {
			return err
		}
		messages, err := queue.Consume(ctx, cleanupTopic)
		if err != nil {
			return err
		}
		go func() {
			for range messages {
				if err := svc.DeleteExpiredSubscribers(); err != nil {
					sentry.CaptureException(err)
					log.Printf("cleanup: %v", err)
				}
			}
		}()
	}

	return nil
}

func (a *app) Close() error {
	if a.cron != nil {
		a.cron.Stop()
	}

	if a.mail != nil {
		if err := a.mail.Stop(); err != nil {
			return err
		}
	}

	if a.httpServer != nil {
		if err := a.httpServer.Close(); err != nil {
			return err
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return err
		}
	}

	return nil
}
