package app

import (
	"net/http"

	"hybrid/config"
	"hybrid/log"
	"hybrid/metrics"
	"hybrid/models"
	"hybrid/remoteauth"
	"hybrid/session"
	"hybrid/trusted"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/lancer-kit/armory/api/render"
	"github.com/lancer-kit/uwe/v2/presets/api"
	"github.com/rs/zerolog"
)

func GetServer(logger zerolog.Logger, cfg config.Cfg, components *Components) *api.Server {
	return api.NewServer(cfg.API, getRouter(logger, cfg, components))
}

func getRouter(logger zerolog.Logger, cfg config.Cfg, components *Components) http.Handler {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(trusted.CapturePeer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(log.LoggerMiddleware(&logger))

	if cfg.API.EnableCORS {
		corsHandler := cors.New(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type",
				"X-CSRF-Token", "X-Sakai-Token"},
			ExposedHeaders:   []string{"Link", "Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // Maximum value not ignored by any of major browsers
		})
		r.Use(corsHandler.Handler)
	}

	h := handler{
		log:       logger,
		sessions:  components.Sessions,
		validator: components.Validator,
	}

	r.Route("/_hybrid", func(r chi.Router) {
		r.Get("/info", func(w http.ResponseWriter, r *http.Request) { render.Success(w, config.App) })

		r.Group(func(r chi.Router) {
			r.Use(components.Sessions.Middleware)
			r.Use(remoteauth.Middleware)
			r.Use(components.Filter.Handler)

			r.Get("/whoami", h.whoAmI)
			if h.validator != nil {
				r.Get("/remote-identity", h.remoteIdentity)
			}
		})
	})
	r.Mount("/", metrics.GetMonitoringMux(cfg.Monitoring, components.Metrics))
	return r
}

type handler struct {
	log       zerolog.Logger
	sessions  session.Manager
	validator *remoteauth.Validator
}

func (h handler) whoAmI(w http.ResponseWriter, r *http.Request) {
	res := models.WhoAmI{RemoteUser: trusted.RemoteUser(r)}
	res.Trusted = res.RemoteUser != ""

	if sess := h.sessions.CurrentSession(r.Context()); sess != nil {
		res.SessionID = sess.ID()
		res.UserEID = sess.UserEID()
		res.UserID = sess.UserID()
	}
	render.Success(w, res)
}

func (h handler) remoteIdentity(w http.ResponseWriter, r *http.Request) {
	info, err := h.validator.Resolve(r)
	if err != nil {
		l := log.IncludeRequest(h.log, r)
		l.Error().Err(err).Msg("unable to resolve remote identity")
		render.ServerError(w)
		return
	}

	res := models.RemoteIdentity{}
	if info != nil {
		res = models.RemoteIdentity{
			Found:        !info.Anonymous(),
			Principal:    info.Principal,
			FirstName:    info.FirstName,
			LastName:     info.LastName,
			EmailAddress: info.EmailAddress,
		}
	}
	render.Success(w, res)
}
