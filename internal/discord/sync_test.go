package discord

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	"github.com/norinorin/discord-slash-command/pkg/slash"
)

const testAppID = "100"

type restCall struct {
	Method string
	URL    string
}

type fakeResponse struct {
	body any
	err  error
}

// fakeREST answers from a method+url table and records every call.
type fakeREST struct {
	mu        sync.Mutex
	calls     []restCall
	bodies    []any
	responses map[restCall][]fakeResponse
}

func newFakeREST() *fakeREST {
	return &fakeREST{responses: make(map[restCall][]fakeResponse)}
}

func (f *fakeREST) on(method, url string, body any, err error) {
	k := restCall{method, url}
	f.responses[k] = append(f.responses[k], fakeResponse{body: body, err: err})
}

func (f *fakeREST) Request(_ context.Context, method, url string, body any) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := restCall{method, url}
	f.calls = append(f.calls, k)
	f.bodies = append(f.bodies, body)

	queue := f.responses[k]
	if len(queue) == 0 {
		return nil, nil
	}
	resp := queue[0]
	if len(queue) > 1 {
		f.responses[k] = queue[1:]
	}
	if resp.err != nil {
		return nil, resp.err
	}
	if resp.body == nil {
		return nil, nil
	}
	return json.Marshal(resp.body)
}

func restError(code int) error {
	return &discordgo.RESTError{
		Response:     &http.Response{StatusCode: code, Status: http.StatusText(code)},
		ResponseBody: []byte(`{"message":"nope"}`),
	}
}

func noop(context.Context, *slash.Invocation) error { return nil }

func testRegistry(t *testing.T, cmds ...*slash.Command) *slash.Registry {
	t.Helper()
	reg := slash.NewRegistry()
	reg.SetApplicationID(testAppID)
	for _, c := range cmds {
		if err := reg.Add(c); err != nil {
			t.Fatalf("Add(%s): %v", c.Name, err)
		}
	}
	return reg
}

func testSyncer(rest RESTClient, reg *slash.Registry) *Syncer {
	s := NewSyncer(rest, reg, SyncOptions{RPS: 1000, MaxAttempts: 3})
	s.retry.InitialDelay = time.Millisecond
	s.retry.RateLimitDelay = time.Millisecond
	s.retry.Jitter = false
	return s
}

func pingCommand(desc string) *slash.Command {
	return slash.MustCommand(slash.Spec{Name: "ping", Description: desc, Handler: slash.HandlerFunc(noop)})
}

func TestUpsertCreatesThenPatches(t *testing.T) {
	cmd := pingCommand("Pong")
	reg := testRegistry(t, cmd)
	rest := newFakeREST()
	createURL := discordgo.EndpointApplicationGlobalCommands(testAppID)
	rest.on(http.MethodPost, createURL, &discordgo.ApplicationCommand{ID: "555", Name: "ping"}, nil)

	s := testSyncer(rest, reg)
	if err := s.Upsert(context.Background(), cmd, ""); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if cmd.ID != "555" {
		t.Fatalf("ID = %q, want 555", cmd.ID)
	}
	if err := s.Upsert(context.Background(), cmd, ""); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	want := []restCall{
		{http.MethodPost, createURL},
		{http.MethodPatch, discordgo.EndpointApplicationGlobalCommand(testAppID, "555")},
	}
	if diff := cmp.Diff(want, rest.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	wire, ok := rest.bodies[0].(*discordgo.ApplicationCommand)
	if !ok || wire.Name != "ping" || wire.ApplicationID != testAppID {
		t.Errorf("create body = %#v", rest.bodies[0])
	}
}

func TestUpsertWithoutApplicationID(t *testing.T) {
	cmd := pingCommand("Pong")
	reg := slash.NewRegistry()
	if err := reg.Add(cmd); err != nil {
		t.Fatal(err)
	}
	err := testSyncer(newFakeREST(), reg).Upsert(context.Background(), cmd, "")
	if !errors.Is(err, slash.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestDelete(t *testing.T) {
	cmd := pingCommand("Pong")
	reg := testRegistry(t, cmd)
	rest := newFakeREST()
	s := testSyncer(rest, reg)
	ctx := context.Background()

	if _, err := s.Delete(ctx, "missing", ""); !errors.Is(err, slash.ErrNotFound) {
		t.Fatalf("unknown command: err = %v, want ErrNotFound", err)
	}
	if _, err := s.Delete(ctx, "ping", ""); !errors.Is(err, slash.ErrNotFound) {
		t.Fatalf("command without id: err = %v, want ErrNotFound", err)
	}
	if len(rest.calls) != 0 {
		t.Fatalf("unexpected calls: %v", rest.calls)
	}

	cmd.ID = "9"
	got, err := s.Delete(ctx, "ping", "77")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got != cmd {
		t.Error("Delete did not return the removed command")
	}
	if _, ok := reg.Get("ping"); ok {
		t.Error("command still registered")
	}
	want := []restCall{{http.MethodDelete, discordgo.EndpointApplicationGuildCommand(testAppID, "77", "9")}}
	if diff := cmp.Diff(want, rest.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestBulkOverwrite(t *testing.T) {
	ping := pingCommand("Pong")
	echo := slash.MustCommand(slash.Spec{Name: "echo", Description: "Echo", Handler: slash.HandlerFunc(noop)})
	ping.ID = "stale"
	reg := testRegistry(t, ping, echo)

	rest := newFakeREST()
	url := discordgo.EndpointApplicationGuildCommands(testAppID, "77")
	rest.on(http.MethodPut, url, []*discordgo.ApplicationCommand{
		{ID: "1", Name: "echo"},
		{ID: "2", Name: "ping"},
	}, nil)

	if err := testSyncer(rest, reg).BulkOverwrite(context.Background(), "77"); err != nil {
		t.Fatalf("BulkOverwrite: %v", err)
	}
	wires, ok := rest.bodies[0].([]*discordgo.ApplicationCommand)
	if !ok || len(wires) != 2 {
		t.Fatalf("body = %#v", rest.bodies[0])
	}
	for _, w := range wires {
		if w.ID != "" {
			t.Errorf("wire %s carries id %q", w.Name, w.ID)
		}
	}
	if ping.ID != "2" || echo.ID != "1" {
		t.Errorf("ids = %q/%q, want 2/1", ping.ID, echo.ID)
	}
}

func TestDiff(t *testing.T) {
	same := slash.MustCommand(slash.Spec{
		Name:        "same",
		Description: "Unchanged",
		Options: []*slash.Option{
			slash.IntegerOption("n", "Number", false, &slash.Choice{Name: "one", Value: 1}, &slash.Choice{Name: "two", Value: 2}),
		},
		Handler: slash.HandlerFunc(noop),
	})
	changed := slash.MustCommand(slash.Spec{Name: "changed", Description: "New text", Handler: slash.HandlerFunc(noop)})
	fresh := slash.MustCommand(slash.Spec{Name: "fresh", Description: "Brand new", Handler: slash.HandlerFunc(noop)})
	reg := testRegistry(t, same, changed, fresh)

	listURL := discordgo.EndpointApplicationGlobalCommands(testAppID)
	rest := newFakeREST()
	rest.on(http.MethodGet, listURL, []*discordgo.ApplicationCommand{
		{
			ID: "1", ApplicationID: testAppID, Name: "same", Description: "Unchanged",
			Options: []*discordgo.ApplicationCommandOption{{
				Type: discordgo.ApplicationCommandOptionInteger, Name: "n", Description: "Number",
				// reversed, as remote order is not guaranteed
				Choices: []*discordgo.ApplicationCommandOptionChoice{{Name: "two", Value: 2}, {Name: "one", Value: 1}},
			}},
		},
		{ID: "2", ApplicationID: testAppID, Name: "changed", Description: "Old text"},
		{ID: "3", ApplicationID: testAppID, Name: "gone", Description: "Removed locally"},
	}, nil)
	rest.on(http.MethodPatch, discordgo.EndpointApplicationGlobalCommand(testAppID, "2"), &discordgo.ApplicationCommand{ID: "2", Name: "changed"}, nil)
	rest.on(http.MethodPost, listURL, &discordgo.ApplicationCommand{ID: "4", Name: "fresh"}, nil)

	report, err := testSyncer(rest, reg).Diff(context.Background(), "")
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	want := SyncReport{
		Unchanged: []string{"same"},
		Created:   []string{"fresh"},
		Updated:   []string{"changed"},
		Deleted:   []string{"gone"},
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	if same.ID != "1" || changed.ID != "2" || fresh.ID != "4" {
		t.Errorf("ids = %q %q %q", same.ID, changed.ID, fresh.ID)
	}
	last := rest.calls[len(rest.calls)-1]
	if last != (restCall{http.MethodDelete, discordgo.EndpointApplicationGlobalCommand(testAppID, "3")}) {
		t.Errorf("last call = %v, want delete of obsolete command", last)
	}
}

func TestDiffCollectsFailures(t *testing.T) {
	a := slash.MustCommand(slash.Spec{Name: "a", Description: "A", Handler: slash.HandlerFunc(noop)})
	b := slash.MustCommand(slash.Spec{Name: "b", Description: "B", Handler: slash.HandlerFunc(noop)})
	reg := testRegistry(t, a, b)

	listURL := discordgo.EndpointApplicationGlobalCommands(testAppID)
	rest := newFakeREST()
	rest.on(http.MethodGet, listURL, []*discordgo.ApplicationCommand{
		{ID: "7", ApplicationID: testAppID, Name: "b", Description: "Old B"},
	}, nil)
	rest.on(http.MethodPatch, discordgo.EndpointApplicationGlobalCommand(testAppID, "7"), nil, restError(http.StatusBadRequest))
	rest.on(http.MethodPost, listURL, &discordgo.ApplicationCommand{ID: "8", Name: "a"}, nil)

	report, err := testSyncer(rest, reg).Diff(context.Background(), "")
	if err == nil {
		t.Fatal("expected the failed update to be reported")
	}
	if diff := cmp.Diff([]string{"a"}, report.Created); diff != "" {
		t.Errorf("created mismatch (-want +got):\n%s", diff)
	}
	if len(report.Updated) != 0 {
		t.Errorf("updated = %v", report.Updated)
	}
	if a.ID != "8" {
		t.Errorf("a.ID = %q, want 8", a.ID)
	}
}

func TestCallRetriesServerErrors(t *testing.T) {
	cmd := pingCommand("Pong")
	reg := testRegistry(t, cmd)
	url := discordgo.EndpointApplicationGlobalCommands(testAppID)
	rest := newFakeREST()
	rest.on(http.MethodPost, url, nil, restError(http.StatusBadGateway))
	rest.on(http.MethodPost, url, nil, restError(http.StatusTooManyRequests))
	rest.on(http.MethodPost, url, &discordgo.ApplicationCommand{ID: "5"}, nil)

	if err := testSyncer(rest, reg).Upsert(context.Background(), cmd, ""); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if len(rest.calls) != 3 {
		t.Errorf("calls = %d, want 3", len(rest.calls))
	}
}

func TestCallDoesNotRetryClientErrors(t *testing.T) {
	cmd := pingCommand("Pong")
	reg := testRegistry(t, cmd)
	url := discordgo.EndpointApplicationGlobalCommands(testAppID)
	rest := newFakeREST()
	rest.on(http.MethodPost, url, nil, restError(http.StatusForbidden))

	err := testSyncer(rest, reg).Upsert(context.Background(), cmd, "")
	var re *discordgo.RESTError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want a wrapped RESTError", err)
	}
	if len(rest.calls) != 1 {
		t.Errorf("calls = %d, want 1", len(rest.calls))
	}
}
