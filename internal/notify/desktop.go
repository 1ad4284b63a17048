package notify

import "github.com/0xAX/notificator"

// DesktopNotifier shows reminders through the OS notification daemon.
type DesktopNotifier struct {
	n *notificator.Notificator
}

func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{
		n: notificator.New(notificator.Options{AppName: "tasklist"}),
	}
}

func (d *DesktopNotifier) Notify(title, body, link string) error {
	return d.n.Push(title, body+"\n"+link, "", notificator.UR_NORMAL)
}
