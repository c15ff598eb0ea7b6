package main

import (
	"flag"
	"fmt"
	"io/ioutil"

	"github.com/lancer-kit/uwe/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

func main() {
	configPath := flag.String("conf", "trustload.yaml", "path to config file")
	flag.Parse()

	logger := logrus.New()

	cfg, err := getConfig(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("unable to load config")
	}

	results := newTally()

	chief := uwe.NewChief()
	chief.UseDefaultRecover()
	chief.SetEventHandler(func(event uwe.Event) {
		logger.WithFields(logrus.Fields(event.Fields)).Info(event.Message)
	})

	for i := 0; i < cfg.Workers; i++ {
		name := fmt.Sprintf("emitter_%d", i)
		chief.AddWorker(uwe.WorkerName(name), newEmitter(cfg, logger.WithField("worker", name), results))
	}

	chief.Run()

	logger.WithField("results", results.Snapshot()).Info("load finished")
}

func getConfig(path string) (LoadCfg, error) {
	var cfg LoadCfg

	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err = yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
