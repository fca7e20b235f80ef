// Package friendbot funds freshly generated addresses on test networks.
package friendbot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-errors/errors"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/support/log"
)

// Bot funds accounts through a friendbot endpoint. Only test networks run
// one; construction is gated on the URL being configured.
type Bot struct {
	URL  string
	HTTP *http.Client
	log  *log.Entry
}

func New(botURL string) *Bot {
	return &Bot{
		URL:  botURL,
		HTTP: http.DefaultClient,
		log:  log.WithField("service", "friendbot"),
	}
}

// Fund asks friendbot to create and fund the account at address.
func (b *Bot) Fund(ctx context.Context, address string) error {
	u, err := url.Parse(b.URL)
	if err != nil {
		return errors.Wrap(err, 1)
	}
	q := u.Query()
	q.Set("addr", address)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return errors.Wrap(err, 1)
	}

	resp, err := b.HTTP.Do(req)
	if err != nil {
		return errors.Wrap(err, 1)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("friendbot: funding %s failed with status %d", address, resp.StatusCode)
	}
	b.log.WithField("address", address).Info("account funded")
	return nil
}

// CreateKeypair generates a new random account keypair.
func CreateKeypair() (address, seed string, err error) {
	kp, err := keypair.Random()
	if err != nil {
		return "", "", err
	}
	return kp.Address(), kp.Seed(), nil
}
