// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"strings"
	"sync/atomic"

	"atelier/internal/pkg/logger"

	"gopkg.in/yaml.v3"
)

// Config 是所有服务共享的配置结构。
// 启动时从 YAML 文件加载一次，关键字段允许用环境变量覆盖，
// 方便在容器环境下不改文件就能调整连接地址。
type Config struct {
	App struct {
		// 优惠活动总开关，关闭后所有优惠券评估直接返回不可用
		EnablePromotions bool `yaml:"enablePromotions"`
		// 订单确认后支付超时时长（秒）
		PaymentTimeoutSeconds int `yaml:"paymentTimeoutSeconds"`
	} `yaml:"app"`

	Infra struct {
		Mysql struct {
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Host     string `yaml:"host"`
			Database string `yaml:"database"`
		} `yaml:"mysql"`
		Redis struct {
			Addr string `yaml:"addr"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
		} `yaml:"kafka"`
		Zookeeper struct {
			Servers []string `yaml:"servers"`
		} `yaml:"zookeeper"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
	} `yaml:"infra"`

	Services struct {
		CatalogURL   string `yaml:"catalogUrl"`
		CartURL      string `yaml:"cartUrl"`
		PromotionURL string `yaml:"promotionUrl"`
		OrderURL     string `yaml:"orderUrl"`
	} `yaml:"services"`
}

var currentConfig atomic.Pointer[Config]

// Init 加载配置并初始化全局 logger。
// 每个服务的 main 函数必须在 StartService 之前调用。
func Init() {
	cfg := defaultConfig()

	path := getEnv("CONFIG_FILE", "configs/config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			logger.Logger.Fatal().Err(err).Str("path", path).Msg("failed to parse config file")
		}
	} else {
		logger.Logger.Warn().Str("path", path).Msg("config file not found, using defaults")
	}

	applyEnvOverrides(cfg)
	currentConfig.Store(cfg)
}

// GetCurrentConfig 返回当前生效的配置。
func GetCurrentConfig() *Config {
	cfg := currentConfig.Load()
	if cfg == nil {
		// 允许测试代码不经过 Init 直接使用默认配置
		cfg = defaultConfig()
		applyEnvOverrides(cfg)
		currentConfig.Store(cfg)
	}
	return cfg
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.EnablePromotions = true
	cfg.App.PaymentTimeoutSeconds = 900
	cfg.Infra.Mysql.User = "root"
	cfg.Infra.Mysql.Host = "localhost:3306"
	cfg.Infra.Mysql.Database = "atelier"
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Infra.Zookeeper.Servers = []string{"localhost:2181"}
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Services.CatalogURL = "http://localhost:8081"
	cfg.Services.CartURL = "http://localhost:8082"
	cfg.Services.PromotionURL = "http://localhost:8083"
	cfg.Services.OrderURL = "http://localhost:8084"
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("MYSQL_DSN_HOST"); ok {
		cfg.Infra.Mysql.Host = v
	}
	if v, ok := os.LookupEnv("MYSQL_USER"); ok {
		cfg.Infra.Mysql.User = v
	}
	if v, ok := os.LookupEnv("MYSQL_PASSWORD"); ok {
		cfg.Infra.Mysql.Password = v
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.Infra.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.Infra.Kafka.Brokers = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("ZOOKEEPER_SERVERS"); ok {
		cfg.Infra.Zookeeper.Servers = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("JAEGER_ENDPOINT"); ok {
		cfg.Infra.Jaeger.Endpoint = v
	}
}
