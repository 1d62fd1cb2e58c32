// Copyright 2024 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

// Package notify delivers user facing notifications.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/sirupsen/logrus"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarn    Severity = "warn"
	SeverityError   Severity = "error"
)

// Display lifetimes of the notifications emitted by the client.
const (
	LifeSuccess    = 3000 * time.Millisecond
	LifeError      = 5000 * time.Millisecond
	LifeValidation = 8000 * time.Millisecond
)

type Notification struct {
	Severity Severity
	Summary  string
	Detail   string
	Life     time.Duration
}

// Sink receives notifications; delivery is fire-and-forget.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, n Notification)

func (f SinkFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// LogSink writes notifications to the context logger.
type LogSink struct{}

func (LogSink) Notify(ctx context.Context, n Notification) {
	l := log.FromContext(ctx).F(log.Ctx{"summary": n.Summary})
	var level logrus.Level
	switch n.Severity {
	case SeverityError:
		level = logrus.ErrorLevel
	case SeverityWarn:
		level = logrus.WarnLevel
	default:
		level = logrus.InfoLevel
	}
	l.Log(level, n.Detail)
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return Notification{}, false
	}
	return r.notifications[len(r.notifications)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.notifications = nil
	r.mu.Unlock()
}

// Multi fans a notification out to every sink.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, s := range m {
		if s != nil {
			s.Notify(ctx, n)
		}
	}
}
