package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/relwatch/relwatch/internal/config"
)

type fakeChannel struct {
	name       string
	configured bool
	err        error
	sent       int
}

func (f *fakeChannel) Name() string       { return f.name }
func (f *fakeChannel) IsConfigured() bool { return f.configured }
func (f *fakeChannel) Send(_ context.Context, _ Alert) error {
	f.sent++
	return f.err
}

func TestDispatchSkipsUnconfiguredChannels(t *testing.T) {
	off := &fakeChannel{name: "email"}
	on := &fakeChannel{name: "slack", configured: true}
	d := NewDispatcherWithChannels(off, on)

	results := d.Dispatch(context.Background(), TestAlert())
	if off.sent != 0 {
		t.Fatal("unconfigured channel must not send")
	}
	if on.sent != 1 {
		t.Fatal("configured channel must send")
	}
	if results[0].Attempted || !results[1].Attempted || !results[1].OK {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestDispatchContinuesPastFailures(t *testing.T) {
	bad := &fakeChannel{name: "email", configured: true, err: errors.New("smtp down")}
	good := &fakeChannel{name: "slack", configured: true}
	d := NewDispatcherWithChannels(bad, good)

	results := d.Dispatch(context.Background(), TestAlert())
	if good.sent != 1 {
		t.Fatal("later channels must still send after a failure")
	}
	if !AnySucceeded(results) {
		t.Fatal("aggregate must be success when any channel delivered")
	}
	if results[0].OK || results[0].Error == "" {
		t.Fatalf("failure not recorded: %+v", results[0])
	}
}

func TestAnySucceededAllFailed(t *testing.T) {
	results := []ChannelResult{
		{Channel: "email", Attempted: true},
		{Channel: "slack"},
	}
	if AnySucceeded(results) {
		t.Fatal("no success expected")
	}
}

func TestAnySucceededNoneAttempted(t *testing.T) {
	if AnySucceeded([]ChannelResult{{Channel: "email"}, {Channel: "slack"}}) {
		t.Fatal("unattempted channels are not successes")
	}
}

func TestDispatcherChannelLookup(t *testing.T) {
	d := NewDispatcher(config.NotifyConfig{})
	for _, name := range []string{"email", "slack", "telegram", "webhook"} {
		if d.Channel(name) == nil {
			t.Errorf("missing channel %s", name)
		}
	}
	if d.Channel("pager") != nil {
		t.Fatal("unknown channel must return nil")
	}
}

func TestIsAnyConfigured(t *testing.T) {
	d := NewDispatcher(config.NotifyConfig{})
	if d.IsAnyConfigured() {
		t.Fatal("empty config must have no usable channel")
	}
	d = NewDispatcher(config.NotifyConfig{
		Slack: config.SlackNotifyConfig{Enabled: true, WebhookURL: "https://hooks.slack.test/x"},
	})
	if !d.IsAnyConfigured() {
		t.Fatal("slack should be usable")
	}
}

func TestSubjectLineMarksMandatoryUpgrades(t *testing.T) {
	a := TestAlert()
	subject := subjectLine(a)
	if subject != "[LOW] relwatch/relwatch v0.0.2 released" {
		t.Fatalf("unexpected subject: %q", subject)
	}
	a.Classification.MandatoryUpgrade = true
	if got := subjectLine(a); got != "[LOW] relwatch/relwatch v0.0.2 released (MANDATORY UPGRADE)" {
		t.Fatalf("unexpected subject: %q", got)
	}
}
