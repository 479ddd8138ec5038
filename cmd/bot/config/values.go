package config

import "time"

const (
	// AppName is the name of the application.
	AppName = "tickets"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`
)

// Config is the configuration of the bot, read from the environment.
type Config struct {
	// BotToken is the token for the bot.
	BotToken string `env:"BOT_TOKEN"`

	// ApplicationId is the ID of the application.
	ApplicationId string `env:"APPLICATION_ID"`

	// MonitoringPort is the port for the monitoring server.
	MonitoringPort string `env:"MONITORING_PORT" envDefault:"8080"`

	// LogLevel is the minimum level logged.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogFormat is either text or json.
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// StoreBackend selects where tickets and guild configuration are stored.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"bolt"`

	// MongoUri is the URI for the MongoDB database.
	MongoUri string `env:"MONGO_URI"`

	// BoltPath is the file of the bolt store.
	BoltPath string `env:"BOLT_PATH" envDefault:"data/tickets.db"`

	// RedisAddr is the address of the redis server.
	RedisAddr string `env:"REDIS_ADDR"`

	// RedisPassword is the password of the redis server.
	RedisPassword string `env:"REDIS_PASSWORD"`

	// RedisDB is the redis database number.
	RedisDB int `env:"REDIS_DB" envDefault:"0"`

	// GracePeriod is the delay before a close or delete takes effect.
	GracePeriod time.Duration `env:"TICKET_GRACE_PERIOD" envDefault:"5s"`

	// RetryAttempts is how many times a close or delete is attempted.
	RetryAttempts int `env:"TICKET_RETRY_ATTEMPTS" envDefault:"3"`

	// RetryDelay is the wait between attempts of a close or delete.
	RetryDelay time.Duration `env:"TICKET_RETRY_DELAY" envDefault:"2s"`

	// WelcomeRate is how many welcome messages per second a guild may send over time.
	WelcomeRate float64 `env:"WELCOME_RATE" envDefault:"0.5"`

	// WelcomeBurst is how many welcome messages a guild may send at once.
	WelcomeBurst int `env:"WELCOME_BURST" envDefault:"5"`
}
