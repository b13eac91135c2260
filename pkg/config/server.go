package config

import (
	"time"

	"github.com/spf13/viper"
)

// Server HTTP server config struct
type Server struct {
	Addr         string        `validate:"hostname_port"`
	ReadTimeout  time.Duration `validate:"gte=0"`
	WriteTimeout time.Duration `validate:"gte=0"`
	// MaxBodyBytes caps the size of request bodies.
	MaxBodyBytes int64 `validate:"gt=0"`
}

func setServerDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)
}

func getServerConfig(v *viper.Viper) *Server {
	return &Server{
		Addr:         v.GetString("server.addr"),
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		MaxBodyBytes: v.GetInt64("server.max_body_bytes"),
	}
}
