// Package notify turns fired alarm payloads into user-facing notifications
// and deep links back into the app.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"tasklist/internal/model"
	"tasklist/internal/repository"
)

const deepLinkPrefix = "tasklist://task/"

// DeepLink points back into the app at one task's detail view.
type DeepLink struct {
	TaskID uint
}

func (l DeepLink) String() string {
	return fmt.Sprintf("%s%d", deepLinkPrefix, l.TaskID)
}

// ParseDeepLink accepts either the full tasklist://task/<id> form or a bare
// numeric id.
func ParseDeepLink(raw string) (DeepLink, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, deepLinkPrefix)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return DeepLink{}, fmt.Errorf("invalid deep link %q", raw)
	}
	return DeepLink{TaskID: uint(id)}, nil
}

// Notifier delivers one rendered reminder to the user.
type Notifier interface {
	Notify(title, body, link string) error
}

// Dispatcher is the callback behind the alarm facility. It receives only
// the payload fixed at schedule time; the process that scheduled the alarm
// may be long gone, so nothing else is consulted.
type Dispatcher struct {
	notifiers []Notifier
	log       *logrus.Logger
}

func NewDispatcher(log *logrus.Logger, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers, log: log}
}

// Dispatch renders the reminder and fans it out to every configured
// channel. Delivery failures are logged per channel; there is no retry
// contract with the platform.
func (d *Dispatcher) Dispatch(taskID uint, title string) {
	link := DeepLink{TaskID: taskID}
	body := fmt.Sprintf("Reminder: %s", title)
	for _, n := range d.notifiers {
		if err := n.Notify("Task reminder", body, link.String()); err != nil {
			d.log.Warnf("notify task %d: %v", taskID, err)
		}
	}
}

// Resolve maps a deep link back to its task. A link whose task no longer
// exists resolves to nil with no error; the app just ignores it.
func Resolve(ctx context.Context, tasks *repository.TaskRepository, link DeepLink) (*model.Task, error) {
	task, err := tasks.GetByID(ctx, link.TaskID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}
