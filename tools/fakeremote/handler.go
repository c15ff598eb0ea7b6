package main

import (
	"encoding/json"
	"net/http"

	"hybrid/token"

	"github.com/sirupsen/logrus"
)

const (
	defaultPath  = "/var/cluster/user.cookie.json"
	cookieParam  = "c"
	anonymousEID = "anonymous"
)

// Config of the stand-in for the remote "who owns this cookie" endpoint.
type Config struct {
	HostPort string `yaml:"host_port"`
	Path     string `yaml:"path"`
	// Secret shared with the callers; their x-sakai-token must verify with it.
	Secret string `yaml:"secret"`
	// Callers lists the identities allowed to ask. Empty allows any.
	Callers []string           `yaml:"callers"`
	Cookies map[string]UserDef `yaml:"cookies"`
}

func (conf Config) path() string {
	if conf.Path == "" {
		return defaultPath
	}
	return conf.Path
}

type UserDef struct {
	Principal string `yaml:"principal"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
}

type userResponse struct {
	User struct {
		Principal  string            `json:"principal"`
		Properties map[string]string `json:"properties"`
	} `json:"user"`
}

func newHandler(conf Config, logger *logrus.Entry) http.Handler {
	codec := token.NewCodec(nil)
	callers := map[string]struct{}{}
	for _, c := range conf.Callers {
		callers[c] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie := r.URL.Query().Get(cookieParam)
		log := logger.WithField("cookie", cookie)

		caller, err := codec.ValidateRequest(r, conf.Secret)
		if err != nil || caller == "" {
			log.WithError(err).Info("response Forbidden")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		log = log.WithField("caller", caller)

		if _, ok := callers[caller]; len(callers) > 0 && !ok {
			log.Info("response Forbidden")
			w.WriteHeader(http.StatusForbidden)
			return
		}

		def, ok := conf.Cookies[cookie]
		if !ok {
			log.Info("response NotFound")
			w.WriteHeader(http.StatusNotFound)
			return
		}

		resp := userResponse{}
		resp.User.Principal = def.Principal
		if resp.User.Principal == "" {
			resp.User.Principal = anonymousEID
		}
		resp.User.Properties = map[string]string{
			"firstName": def.FirstName,
			"lastName":  def.LastName,
			"email":     def.Email,
		}

		raw, _ := json.Marshal(resp)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
		log.Info("response OK")
	})
}
