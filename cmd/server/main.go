package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/danmakutv/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
	totalLanes = configVar[int]{
		envKey:       "SERVER_TOTAL_LANES",
		flagKey:      "total-lanes",
		defaultValue: 12,
	}
	screenWidth = configVar[int]{
		envKey:       "SERVER_SCREEN_WIDTH",
		flagKey:      "screen-width",
		defaultValue: 1280,
	}
	historySize = configVar[int]{
		envKey:       "SERVER_HISTORY_SIZE",
		flagKey:      "history-size",
		defaultValue: 500,
	}
	defaultCooldownMs = configVar[int]{
		envKey:       "SERVER_DEFAULT_COOLDOWN_MS",
		flagKey:      "default-cooldown-ms",
		defaultValue: 3000,
	}
	heartbeatIntervalS = configVar[int]{
		envKey:       "SERVER_HEARTBEAT_INTERVAL_S",
		flagKey:      "heartbeat-interval-s",
		defaultValue: 30,
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Int(totalLanes.flagKey, totalLanes.defaultValue, "Number of display lanes")
	pflag.Int(screenWidth.flagKey, screenWidth.defaultValue, "Reference screen width in px")
	pflag.Int(historySize.flagKey, historySize.defaultValue, "Comment history ring size")
	pflag.Int(defaultCooldownMs.flagKey, defaultCooldownMs.defaultValue, "Default comment cooldown in ms")
	pflag.Int(heartbeatIntervalS.flagKey, heartbeatIntervalS.defaultValue, "Heartbeat interval in seconds")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)
	viper.BindEnv(totalLanes.flagKey, totalLanes.envKey)
	viper.BindEnv(screenWidth.flagKey, screenWidth.envKey)
	viper.BindEnv(historySize.flagKey, historySize.envKey)
	viper.BindEnv(defaultCooldownMs.flagKey, defaultCooldownMs.envKey)
	viper.BindEnv(heartbeatIntervalS.flagKey, heartbeatIntervalS.envKey)

	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)
	viper.SetDefault(totalLanes.flagKey, totalLanes.defaultValue)
	viper.SetDefault(screenWidth.flagKey, screenWidth.defaultValue)
	viper.SetDefault(historySize.flagKey, historySize.defaultValue)
	viper.SetDefault(defaultCooldownMs.flagKey, defaultCooldownMs.defaultValue)
	viper.SetDefault(heartbeatIntervalS.flagKey, heartbeatIntervalS.defaultValue)

	config := &app.AppConfig{
		Host:               viper.GetString(host.flagKey),
		Port:               viper.GetInt(port.flagKey),
		LogLevel:           viper.GetString(logLevel.flagKey),
		RedisHost:          viper.GetString(redisHost.flagKey),
		RedisPort:          viper.GetInt(redisPort.flagKey),
		RedisPassword:      viper.GetString(redisPassword.flagKey),
		TotalLanes:         viper.GetInt(totalLanes.flagKey),
		ScreenWidth:        viper.GetInt(screenWidth.flagKey),
		HistorySize:        viper.GetInt(historySize.flagKey),
		DefaultCooldownMs:  viper.GetInt(defaultCooldownMs.flagKey),
		HeartbeatIntervalS: viper.GetInt(heartbeatIntervalS.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
