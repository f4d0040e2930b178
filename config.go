package mailreg

// Config represents the main config
type Config struct {
	DB struct {
		Type string // "bolt", "sqlite"
		Path string
	}

	HTTP struct {
		Addr    string
		Variant string // "default", "simple", "messages"
	}

	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
	}

	Mailinglist struct {
		From             string
		ActivationDays   int  `mapstructure:"activation_days"`
		RegistrationOpen bool `mapstructure:"registration_open"`
		Managers         []string
		Product          struct {
			Name string
		}
		Admin struct {
			Secret string
		}
		Flash struct {
			Secret string
		}
		Cleanup struct {
			Cron struct {
				Spec string
			}
		}
	}

	Sentry struct {
		DSN string
	}

	AMQP struct {
		URL string
	}
}
