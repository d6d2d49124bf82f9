package service

import "github.com/AdamBeresnev/volley-scorekeeper/internal/live"

// Publisher receives every committed set and match change.
type Publisher interface {
	Publish(e live.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(live.Event) {}

func orNoop(p Publisher) Publisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func publishAll(p Publisher, events []live.Event) {
	for _, e := range events {
		p.Publish(e)
	}
}
