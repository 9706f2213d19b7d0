package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port        string `mapstructure:"port"`
		MetricsPort string `mapstructure:"metrics_port"`
	} `mapstructure:"server"`
	Database struct {
		Driver      string `mapstructure:"driver"` // "sqlite" or "postgres"
		Path        string `mapstructure:"path"`   // sqlite file
		BusyTimeout int    `mapstructure:"busy_timeout_ms"`
		Host        string `mapstructure:"host"`
		Port        string `mapstructure:"port"`
		User        string `mapstructure:"user"`
		Password    string `mapstructure:"password"`
		Name        string `mapstructure:"name"`
	} `mapstructure:"database"`
	Scheduler struct {
		// Mode selects exactly one firing mechanism: "cron" projects alarms into
		// the user crontab, "loop" polls the store in-process. Never both.
		Mode            string `mapstructure:"mode"`
		PollingInterval int    `mapstructure:"polling_interval_seconds"`
		Marker          string `mapstructure:"marker"`
		PlayEntrypoint  string `mapstructure:"play_entrypoint"`
	} `mapstructure:"scheduler"`
	Audio struct {
		SoundsDir      string `mapstructure:"sounds_dir"`
		PlayerBin      string `mapstructure:"player_bin"`
		MixerBin       string `mapstructure:"mixer_bin"`
		MixerControl   string `mapstructure:"mixer_control"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"audio"`
	Backup struct {
		Dir string `mapstructure:"dir"`
		// ServiceUnit is stopped and restarted around a restore. It must name
		// the scheduler-side unit, never the unit running this API server.
		ServiceUnit string `mapstructure:"service_unit"`
		Provider    string `mapstructure:"provider"` // "none", "local" or "s3"
		LocalRoot   string `mapstructure:"local_root"`
		Bucket      string `mapstructure:"bucket"`
		KeyID       string `mapstructure:"key_id"`
		AppKey      string `mapstructure:"app_key"`
		Endpoint    string `mapstructure:"endpoint"`
		Region      string `mapstructure:"region"`
	} `mapstructure:"backup"`
	Auth struct {
		JWTSecret     string `mapstructure:"jwt_secret"`
		TokenTTLHours int    `mapstructure:"token_ttl_hours"`
		AdminUser     string `mapstructure:"admin_user"`
		AdminPass     string `mapstructure:"admin_pass"`
	} `mapstructure:"auth"`
	LogLevel string `mapstructure:"log_level"`
}

func Load() *Config {
	viper.SetEnvPrefix("BELL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Register keys
	viper.BindEnv("server.port")
	viper.BindEnv("server.metrics_port")

	viper.BindEnv("database.driver")
	viper.BindEnv("database.path")
	viper.BindEnv("database.busy_timeout_ms")
	viper.BindEnv("database.host")
	viper.BindEnv("database.port")
	viper.BindEnv("database.user")
	viper.BindEnv("database.password")
	viper.BindEnv("database.name")

	viper.BindEnv("scheduler.mode")
	viper.BindEnv("scheduler.polling_interval_seconds")
	viper.BindEnv("scheduler.marker")
	viper.BindEnv("scheduler.play_entrypoint")

	viper.BindEnv("audio.sounds_dir")
	viper.BindEnv("audio.player_bin")
	viper.BindEnv("audio.mixer_bin")
	viper.BindEnv("audio.mixer_control")
	viper.BindEnv("audio.timeout_seconds")

	viper.BindEnv("backup.dir")
	viper.BindEnv("backup.service_unit")
	viper.BindEnv("backup.provider")
	viper.BindEnv("backup.local_root")
	viper.BindEnv("backup.bucket")
	viper.BindEnv("backup.key_id")
	viper.BindEnv("backup.app_key")
	viper.BindEnv("backup.endpoint")
	viper.BindEnv("backup.region")

	viper.BindEnv("auth.jwt_secret")
	viper.BindEnv("auth.token_ttl_hours")
	viper.BindEnv("auth.admin_user")
	viper.BindEnv("auth.admin_pass")

	viper.BindEnv("log_level")

	// Defaults (appliance-friendly: sqlite file next to the binary)
	viper.SetDefault("server.port", ":8080")
	viper.SetDefault("server.metrics_port", ":9091")

	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "bells.db")
	viper.SetDefault("database.busy_timeout_ms", 5000)

	viper.SetDefault("scheduler.mode", "cron")
	viper.SetDefault("scheduler.polling_interval_seconds", 30)
	viper.SetDefault("scheduler.marker", "# ChurchBell Alarm ID")
	viper.SetDefault("scheduler.play_entrypoint", "/usr/local/bin/bellplay")

	viper.SetDefault("audio.sounds_dir", "sounds")
	viper.SetDefault("audio.player_bin", "pw-play")
	viper.SetDefault("audio.mixer_bin", "amixer")
	viper.SetDefault("audio.mixer_control", "Master")
	viper.SetDefault("audio.timeout_seconds", 10)

	viper.SetDefault("backup.dir", "backups")
	viper.SetDefault("backup.service_unit", "churchbell-scheduler.service")
	viper.SetDefault("backup.provider", "none")
	viper.SetDefault("backup.local_root", "./offsite")

	viper.SetDefault("auth.jwt_secret", "change-this-secret-key")
	viper.SetDefault("auth.token_ttl_hours", 12)
	viper.SetDefault("auth.admin_user", "admin")
	viper.SetDefault("auth.admin_pass", "changeme")

	viper.SetDefault("log_level", "info")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/churchbell/")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Config error: %s", err)
		} else {
			log.Println("Info: config.yaml not found, using Environment Variables only.")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	if cfg.Scheduler.Mode != "cron" && cfg.Scheduler.Mode != "loop" {
		log.Fatalf("Critical: scheduler.mode must be \"cron\" or \"loop\", got %q", cfg.Scheduler.Mode)
	}

	return &cfg
}
