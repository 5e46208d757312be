package services

import (
	"fmt"

	pubnub "github.com/pubnub/go"
)

// PubNubPublisher implements Publisher on top of a PubNub connection.
type PubNubPublisher struct {
	pn *pubnub.PubNub
}

func NewPubNubPublisher(pn *pubnub.PubNub) *PubNubPublisher {
	return &PubNubPublisher{pn: pn}
}

func (p *PubNubPublisher) Publish(channel string, message map[string]any) error {
	_, _, err := p.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		return fmt.Errorf("pubnub publish to %s: %w", channel, err)
	}
	return nil
}
