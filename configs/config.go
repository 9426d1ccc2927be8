package configs

import (
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config struct
type Config struct {
	App      `mapstructure:"app"`
	Storage  `mapstructure:"storage"`
	Postgres `mapstructure:"postgres"`
	Sqlite   `mapstructure:"sqlite"`
	Line     `mapstructure:"line"`
	Discord  `mapstructure:"discord"`
	Mastodon `mapstructure:"mastodon"`
	OAuth    `mapstructure:"oauth"`
	Repost   `mapstructure:"repost"`
}

// App struct
type App struct {
	Debug      bool   `mapstructure:"debug"`
	Env        string `mapstructure:"env"`
	Port       string `mapstructure:"port"`
	PublicHost string `mapstructure:"public_host"` // Public hostname the OAuth redirect URI is built from
}

// Storage struct
type Storage struct {
	Driver string `mapstructure:"driver"` // postgres, sqlite or memory
}

// Postgres struct
type Postgres struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"database"`
	SSLMode  bool   `mapstructure:"sslmode"`
}

// Sqlite struct
type Sqlite struct {
	Path string `mapstructure:"path"`
}

// Line struct
type Line struct {
	Enabled        bool   `mapstructure:"enabled"`
	ChannelSecret  string `mapstructure:"channel_secret"`
	ChannelToken   string `mapstructure:"channel_token"`
	DraftTimeout   int    `mapstructure:"draft_timeout"`   // Minutes
	MaxAttachments int    `mapstructure:"max_attachments"` // Per repost draft
}

// Discord struct
type Discord struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
}

// Mastodon struct
type Mastodon struct {
	ClientName  string `mapstructure:"client_name"`
	Website     string `mapstructure:"website"`
	HTTPTimeout int    `mapstructure:"http_timeout"` // Seconds
}

// OAuth struct
type OAuth struct {
	StateCapacity int `mapstructure:"state_capacity"`
}

// Repost struct
type Repost struct {
	MaxConcurrentUploads int    `mapstructure:"max_concurrent_uploads"` // 0 means one goroutine per attachment
	PollInterval         int    `mapstructure:"poll_interval"`          // Milliseconds
	MaxPolls             int    `mapstructure:"max_polls"`
	TempDir              string `mapstructure:"temp_dir"`
	FetchTimeout         int    `mapstructure:"fetch_timeout"` // Seconds
}

var config Config

// InitViper func
func InitViper(path, env string) {
	getConfig(path, env)
}

// GetViper func
func GetViper() *Config {
	return &config
}

func getConfig(path, env string) {
	viper.SetConfigName("config")
	viper.AddConfigPath(path)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Println("Config file has changed: ", e.Name)
	})
	err = viper.Unmarshal(&config)
	if err != nil {
		log.Fatalln(err)
	}
}
