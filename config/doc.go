// Package config loads service configuration with Viper.
//
// Values are layered: config.yml, then a .env file (via godotenv), then the
// process environment. Environment variables bind to nested keys by splitting
// on underscores, so TENCENT_SECRET_ID fills tencent.secret_id and
// COS_BUCKET fills cos.bucket without any per-variable wiring.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("asrgate", &cfg)
package config
