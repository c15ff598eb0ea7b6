package main

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"hybrid/models"
	"hybrid/token"

	"github.com/lancer-kit/uwe/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"syreclabs.com/go/faker"
)

const (
	outcomeTrusted   = "trusted"
	outcomeUntrusted = "untrusted"
	outcomeFailed    = "failed"
)

// tally counts request outcomes across emitters.
type tally struct {
	sync.Mutex
	data map[string]int
}

func newTally() *tally {
	return &tally{data: map[string]int{}}
}

func (t *tally) Add(key string) {
	t.Lock()
	defer t.Unlock()
	t.data[key]++
}

func (t *tally) Snapshot() map[string]int {
	t.Lock()
	defer t.Unlock()
	res := make(map[string]int, len(t.data))
	for k, v := range t.data {
		res[k] = v
	}
	return res
}

type emitter struct {
	cfg    LoadCfg
	codec  *token.Codec
	client *http.Client
	rnd    *rand.Rand

	log   *logrus.Entry
	tally *tally
}

func newEmitter(cfg LoadCfg, log *logrus.Entry, t *tally) *emitter {
	return &emitter{
		cfg:    cfg,
		codec:  token.NewCodec(nil),
		client: &http.Client{Timeout: 5 * time.Second},
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		log:    log,
		tally:  t,
	}
}

func (em *emitter) Init() error { return nil }

func (em *emitter) Run(ctx uwe.Context) error {
	ticker := time.NewTicker(time.Duration(em.cfg.TickPeriod) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			em.client.CloseIdleConnections()
			return nil
		case <-ticker.C:
			outcome, err := em.shoot()
			if err != nil {
				em.log.WithError(err).Warn("request failed")
			}
			em.tally.Add(outcome)
		}
	}
}

// pick returns the identity and secret of the next request.
func (em *emitter) pick() (string, string) {
	identity := em.cfg.Identities[em.rnd.Intn(len(em.cfg.Identities))]
	if em.rnd.Intn(100) < em.cfg.UnknownPercentage {
		identity = faker.Internet().UserName()
	}

	secret := em.cfg.Secret
	if em.rnd.Intn(100) < em.cfg.ForgedPercentage {
		secret = faker.Internet().Password(16, 24)
	}
	return identity, secret
}

func (em *emitter) shoot() (string, error) {
	identity, secret := em.pick()
	tok, err := em.codec.Sign(secret, identity)
	if err != nil {
		return outcomeFailed, errors.Wrap(err, "unable to sign token")
	}

	req, err := http.NewRequest(http.MethodGet, em.cfg.Target, nil)
	if err != nil {
		return outcomeFailed, errors.Wrap(err, "unable to build request")
	}
	req.Header.Set(token.Header, tok)

	resp, err := em.client.Do(req)
	if err != nil {
		return outcomeFailed, errors.Wrap(err, "unable to reach target")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return outcomeFailed, errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	who := new(models.WhoAmI)
	if err := json.NewDecoder(resp.Body).Decode(who); err != nil {
		return outcomeFailed, errors.Wrap(err, "unable to decode response")
	}

	em.log.WithFields(logrus.Fields{"identity": identity, "user_eid": who.UserEID}).Debug("response")
	if who.Trusted && who.UserEID == identity {
		return outcomeTrusted, nil
	}
	return outcomeUntrusted, nil
}
