package main

import (
	"flag"
	"io/ioutil"
	"net/http"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

func main() {
	configPath := flag.String("conf", "fakeremote.yaml", "path to config file")
	flag.Parse()

	logger := logrus.New()

	file, err := ioutil.ReadFile(*configPath)
	if err != nil {
		logger.WithError(err).Error("unable to open config")
		return
	}

	var conf = Config{}
	err = yaml.Unmarshal(file, &conf)
	if err != nil {
		logger.WithError(err).Error("unable to parse config")
		return
	}

	http.Handle(conf.path(), newHandler(conf, logger.WithField("app", "fakeremote")))

	logger.Info("start listen & serve @ ", conf.HostPort)

	if err := http.ListenAndServe(conf.HostPort, nil); err != nil {
		logger.WithError(err).Error("server stopped")
	}
}
