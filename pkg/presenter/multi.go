package presenter

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gallxyz/lowbatt/pkg/alert"
)

// Multi fans decisions out to several presenters. The first one is the
// primary: it runs on the calling goroutine and its return ends the others.
type Multi struct {
	presenters []Presenter
}

func NewMulti(primary Presenter, others ...Presenter) *Multi {
	return &Multi{presenters: append([]Presenter{primary}, others...)}
}

func (m *Multi) Name() string {
	names := make([]string, 0, len(m.presenters))
	for _, p := range m.presenters {
		names = append(names, p.Name())
	}
	return strings.Join(names, "+")
}

func (m *Multi) Apply(d alert.Decision) {
	for _, p := range m.presenters {
		p.Apply(d)
	}
}

func (m *Multi) Run(ctx context.Context, actions Actions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg := &sync.WaitGroup{}
	for _, p := range m.presenters[1:] {
		wg.Add(1)
		go func(p Presenter) {
			defer wg.Done()
			if err := p.Run(ctx, actions); err != nil {
				logrus.WithError(err).WithField("presenter", p.Name()).Error("presenter stopped")
			}
		}(p)
	}

	err := m.presenters[0].Run(ctx, actions)
	cancel()
	wg.Wait()
	return err
}
