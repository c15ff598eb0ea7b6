package app

import (
	"hybrid/config"

	"github.com/lancer-kit/uwe/v2"
	"github.com/rs/zerolog"
)

const (
	WorkerAPI            = "api_server"
	WorkerAuditPublisher = "audit_publisher"
	WorkerSessionSweeper = "session_sweeper"
)

func InitChief(logger zerolog.Logger, cfg config.Cfg, components *Components) uwe.Chief {
	defer func() {
		rec := recover()
		if rec != nil {
			logger.Fatal().Interface("recover", rec).Msg("caught panic")
		}
	}()
	logger = logger.With().Str("app_layer", "workers").Logger()

	chief := uwe.NewChief()
	chief.UseDefaultRecover()
	chief.SetEventHandler(func(event uwe.Event) {
		var level zerolog.Level
		switch event.Level {
		case uwe.LvlFatal, uwe.LvlError:
			level = zerolog.ErrorLevel
		case uwe.LvlInfo:
			level = zerolog.InfoLevel
		default:
			level = zerolog.WarnLevel
		}

		logger.WithLevel(level).Fields(event.Fields).Msg(event.Message)
	})

	chief.AddWorker(WorkerAPI, GetServer(logger.With().Str("worker", WorkerAPI).Logger(), cfg, components))

	chief.AddWorker(WorkerSessionSweeper, components.Sessions)

	if components.Publisher != nil {
		chief.AddWorker(WorkerAuditPublisher, components.Publisher)
	}

	return chief
}
