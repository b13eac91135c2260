package config

import (
	"github.com/spf13/viper"

	"github.com/sandrolain/goformula"
	"github.com/sandrolain/goformula/pkg/cache"
	"github.com/sandrolain/goformula/pkg/parser"
)

// Engine formula engine config struct
type Engine struct {
	MaxNodes   int `validate:"gte=0,lte=100000"`
	MaxDepth   int `validate:"gte=0,lte=10000"`
	Caching    bool
	CacheSize  int `validate:"gte=0"`
	Debug      bool
	KnownNames []string `validate:"dive,required"`
}

func setEngineDefaults(v *viper.Viper) {
	v.SetDefault("engine.max_nodes", parser.DefaultMaxNodes)
	v.SetDefault("engine.max_depth", parser.DefaultMaxDepth)
	v.SetDefault("engine.caching", false)
	v.SetDefault("engine.cache_size", cache.DefaultCapacity)
	v.SetDefault("engine.debug", false)
	v.SetDefault("engine.known_names", []string{})
}

func getEngineConfig(v *viper.Viper) *Engine {
	return &Engine{
		MaxNodes:   v.GetInt("engine.max_nodes"),
		MaxDepth:   v.GetInt("engine.max_depth"),
		Caching:    v.GetBool("engine.caching"),
		CacheSize:  v.GetInt("engine.cache_size"),
		Debug:      v.GetBool("engine.debug"),
		KnownNames: v.GetStringSlice("engine.known_names"),
	}
}

// EngineOptions maps the engine section to goformula options.
func (c *Config) EngineOptions() []goformula.Option {
	e := c.Engine
	opts := []goformula.Option{
		goformula.WithMaxNodes(e.MaxNodes),
		goformula.WithMaxDepth(e.MaxDepth),
		goformula.WithCaching(e.Caching),
		goformula.WithDebug(e.Debug),
	}
	if e.Caching && e.CacheSize > 0 {
		opts = append(opts, goformula.WithCacheSize(e.CacheSize))
	}
	if len(e.KnownNames) > 0 {
		opts = append(opts, goformula.WithKnownNames(e.KnownNames...))
	}
	return opts
}
