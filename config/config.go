package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Storage.
	StorageDriver string `mapstructure:"STORAGE_DRIVER"` // "mongo" or "memory"
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DatabaseName  string `mapstructure:"DATABASE_NAME"`

	// Auth.
	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTTTL        time.Duration `mapstructure:"JWT_TTL"`
	AdminPhone    string        `mapstructure:"ADMIN_PHONE"`
	AdminPassword string        `mapstructure:"ADMIN_PASSWORD"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking rules.
	Timezone           string        `mapstructure:"TIMEZONE"`
	BookingPendingTTL  time.Duration `mapstructure:"BOOKING_PENDING_TTL"`
	MaxScheduleChanges int           `mapstructure:"MAX_SCHEDULE_CHANGES"`

	// VNPay.
	VNPayTmnCode    string `mapstructure:"VNPAY_TMN_CODE"`
	VNPayHashSecret string `mapstructure:"VNPAY_HASH_SECRET"`
	VNPayURL        string `mapstructure:"VNPAY_URL"`
	VNPayReturnURL  string `mapstructure:"VNPAY_RETURN_URL"`

	// Stripe.
	StripeKey           string `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripeSuccessURL    string `mapstructure:"STRIPE_SUCCESS_URL"`
	StripeCancelURL     string `mapstructure:"STRIPE_CANCEL_URL"`

	// Cloudinary, e.g. cloudinary://<key>:<secret>@<cloud>.
	CloudinaryURL string `mapstructure:"CLOUDINARY_URL"`

	// Path to the Firebase service account JSON; empty disables push.
	FirebaseCredentials string `mapstructure:"FIREBASE_CREDENTIALS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "6868")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("STORAGE_DRIVER", "mongo")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "medbook")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("ADMIN_PHONE", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_AUTH_DB", 1)
	v.SetDefault("REDIS_QUEUE_DB", 2)
	v.SetDefault("TIMEZONE", "Asia/Ho_Chi_Minh")
	v.SetDefault("BOOKING_PENDING_TTL", "15m")
	v.SetDefault("MAX_SCHEDULE_CHANGES", 1)
	v.SetDefault("VNPAY_TMN_CODE", "")
	v.SetDefault("VNPAY_HASH_SECRET", "")
	v.SetDefault("VNPAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html")
	v.SetDefault("VNPAY_RETURN_URL", "http://localhost:3000/payment/result")
	v.SetDefault("STRIPE_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	v.SetDefault("STRIPE_SUCCESS_URL", "http://localhost:3000/booking-success")
	v.SetDefault("STRIPE_CANCEL_URL", "http://localhost:3000/payment")
	v.SetDefault("CLOUDINARY_URL", "")
	v.SetDefault("FIREBASE_CREDENTIALS", "")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location returns the clinic time zone, falling back to UTC+7.
func Location() *time.Location {
	loc, err := time.LoadLocation(AppConfig.Timezone)
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}
