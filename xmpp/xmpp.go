// Package xmpp sends defect reports as XMPP chat messages.
package xmpp

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-xmpp"
	log "github.com/sirupsen/logrus"
)

var ErrMissingConfig = errors.New("missing xmpp config")

type (
	// Config for the notifier.
	Config struct {
		Host               string
		Jid                string
		Password           string
		To                 string
		InsecureSkipVerify bool
	}

	Xmpp struct {
		Config Config
	}
)

func serverName(jid string) string {
	parts := strings.SplitN(jid, "@", 2)
	if len(parts) < 2 {
		return jid
	}
	return strings.SplitN(parts[1], "/", 2)[0]
}

// Enabled is true when enough is configured to reach a recipient.
func (x Xmpp) Enabled() bool {
	return len(x.Config.Jid) > 0 && len(x.Config.Password) > 0 && len(x.Config.To) > 0
}

func (x Xmpp) Send(message string) error {

	if !x.Enabled() {
		log.Debug("missing xmpp config")

		return ErrMissingConfig
	}

	host := x.Config.Host
	if len(host) == 0 {
		host = serverName(x.Config.Jid)
	}

	options := xmpp.Options{
		Host:     host,
		User:     x.Config.Jid,
		Password: x.Config.Password,
		NoTLS:    true,
		StartTLS: true,
		TLSConfig: &tls.Config{
			ServerName:         strings.SplitN(host, ":", 2)[0],
			InsecureSkipVerify: x.Config.InsecureSkipVerify,
		},
		Session:       false,
		Status:        "xa",
		StatusMessage: "conversion defect reports",
	}

	log.WithFields(log.Fields{"host": host, "to": x.Config.To}).Debug("create xmpp client")
	talk, err := options.NewClient()
	if err != nil {
		return fmt.Errorf("xmpp client for %s: %w", host, err)
	}
	defer talk.Close()

	if _, err := talk.Send(xmpp.Chat{Remote: x.Config.To, Type: "chat", Text: message}); err != nil {
		return fmt.Errorf("xmpp send to %s: %w", x.Config.To, err)
	}

	return nil
}
