package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

type Notifier interface {
	Notify(title, body string) error
}

type beeepNotifier struct {
	sound bool
}

func (n beeepNotifier) Notify(title, body string) error {
	// icon path may stay empty; each platform picks its own default
	if n.sound {
		return beeep.Alert(title, body, "")
	}
	return beeep.Notify(title, body, "")
}

// New returns a desktop notifier. With sound set, notifications also play
// the platform alert sound.
func New(sound bool) Notifier {
	return beeepNotifier{sound: sound}
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, body string) error

func (f NotifierFunc) Notify(title, body string) error { return f(title, body) }

// Presenter shows reminders as desktop notifications. Delivery failures are
// logged and otherwise ignored.
type Presenter struct {
	n   Notifier
	log *slog.Logger
}

func NewPresenter(n Notifier, log *slog.Logger) *Presenter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Presenter{n: n, log: log}
}

func (p *Presenter) ShowMessage(title, message string) {
	p.log.Info("reminder", "title", title, "message", message)
	if err := p.n.Notify(title, message); err != nil {
		p.log.Error("desktop notification failed", "title", title, "err", err)
	}
}
