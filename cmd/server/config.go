package main

import "time"

type Config struct {
	Host              string        `env:"HOST,default=localhost"`
	Port              int           `env:"PORT,default=4000"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,default=info"`
	JWTSecret         string        `env:"JWT_SECRET"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=168h"`
	RateLimitRPS      float64       `env:"RATE_LIMIT_RPS,default=10"`
	RateLimitBurst    int           `env:"RATE_LIMIT_BURST,default=30"`
	SMTPAddr          string        `env:"SMTP_ADDR"`
	SMTPFrom          string        `env:"SMTP_FROM,default=no-reply@slotswapper.local"`
	SMTPUsername      string        `env:"SMTP_USERNAME"`
	SMTPPassword      string        `env:"SMTP_PASSWORD"`
	RedisAddr         string        `env:"REDIS_ADDR"`
}
