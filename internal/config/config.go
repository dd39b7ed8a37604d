package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App             App             `mapstructure:",squash"`
	Server          Server          `mapstructure:",squash"`
	Database        Database        `mapstructure:",squash"`
	Auth            Auth            `mapstructure:",squash"`
	Cache           Cache           `mapstructure:",squash"`
	Providers       Providers       `mapstructure:",squash"`
	GoogleAds       GoogleAds       `mapstructure:",squash"`
	MetaAds         MetaAds         `mapstructure:",squash"`
	GoogleAnalytics GoogleAnalytics `mapstructure:",squash"`
	KpiWarmup       KpiWarmup       `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

// Cache controla o TTL do cache de snapshots de KPI
type Cache struct {
	TTLSeconds int `mapstructure:"cache_ttl_seconds"`
}

// TTL retorna o TTL configurado como duração
func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Providers controla o comportamento comum dos adaptadores de provedor
type Providers struct {
	TimeoutSeconds     int   `mapstructure:"provider_timeout_seconds"`
	SimulationFallback bool  `mapstructure:"simulation_fallback_enabled"`
	SimulationSeed     int64 `mapstructure:"simulation_seed"`
}

// Timeout retorna o timeout por chamada de provedor como duração
func (p Providers) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

type GoogleAds struct {
	BaseURL    string `mapstructure:"google_ads_base_url"`
	APIKey     string `mapstructure:"google_ads_api_key"`
	CustomerID string `mapstructure:"google_ads_customer_id"`
}

type MetaAds struct {
	BaseURL     string `mapstructure:"meta_base_url"`
	Version     string `mapstructure:"meta_version"`
	URL         string `mapstructure:"-"`
	AccessToken string `mapstructure:"meta_access_token"`
	AccountID   string `mapstructure:"meta_account_id"`
}

type GoogleAnalytics struct {
	BaseURL    string `mapstructure:"google_analytics_base_url"`
	APIKey     string `mapstructure:"google_analytics_api_key"`
	PropertyID string `mapstructure:"google_analytics_property_id"`
}

// KpiWarmup configura o agendador que força o refresh do snapshot antes
// do TTL expirar
type KpiWarmup struct {
	CronSchedule string `mapstructure:"kpi_warmup_cron"`
	Enabled      bool   `mapstructure:"kpi_warmup_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/kpi_dashboard")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("AUTH_SECRET", "your_auth_secret")

	// Cache em memória de 5 minutos, igual para todos os papéis
	viper.SetDefault("CACHE_TTL_SECONDS", 300)

	viper.SetDefault("PROVIDER_TIMEOUT_SECONDS", 10) // timeout por provedor
	viper.SetDefault("SIMULATION_FALLBACK_ENABLED", true)
	viper.SetDefault("SIMULATION_SEED", 0) // 0 = semente derivada do relógio

	viper.SetDefault("GOOGLE_ADS_BASE_URL", "https://googleads.googleapis.com/v17")
	viper.SetDefault("GOOGLE_ADS_API_KEY", "")
	viper.SetDefault("GOOGLE_ADS_CUSTOMER_ID", "")

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_ACCESS_TOKEN", "")
	viper.SetDefault("META_ACCOUNT_ID", "")

	viper.SetDefault("GOOGLE_ANALYTICS_BASE_URL", "https://analyticsdata.googleapis.com/v1beta")
	viper.SetDefault("GOOGLE_ANALYTICS_API_KEY", "")
	viper.SetDefault("GOOGLE_ANALYTICS_PROPERTY_ID", "")

	viper.SetDefault("KPI_WARMUP_CRON", "*/4 * * * *") // um pouco antes do TTL de 5 minutos
	viper.SetDefault("KPI_WARMUP_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.MetaAds.URL = fmt.Sprintf("%s/%s", config.MetaAds.BaseURL, config.MetaAds.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
