package main

import (
	"log"

	coreconfig "github.com/m3rciful/hskbot/core/config"
	corecmd "github.com/m3rciful/hskbot/core/cmd"
	"github.com/m3rciful/hskbot/internal/bot"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := coreconfig.Load(path)
			if err != nil {
				return nil, err
			}
			return configCarrier{cfg: cfg}, nil
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			return bot.New(carrier.CoreConfig())
		},
	})
	if err != nil {
		log.Fatalf("hskbot: %v", err)
	}
}

type configCarrier struct {
	cfg *coreconfig.Config
}

func (c configCarrier) CoreConfig() *coreconfig.Config {
	return c.cfg
}
