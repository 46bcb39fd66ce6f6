package plugin

import (
	"context"
	"testing"
)

func TestOptions(t *testing.T) {
	opts := Options{
		"url":    "https://example.com",
		"size":   float64(250),
		"ratio":  1.5,
		"n":      int64(7),
		"public": true,
	}

	if v, ok := opts.String("url"); !ok || v != "https://example.com" {
		t.Errorf("String(url) = %q, %v", v, ok)
	}
	if _, ok := opts.String("size"); ok {
		t.Error("String(size) accepted a number")
	}
	if v, ok := opts.Int("size"); !ok || v != 250 {
		t.Errorf("Int(size) = %d, %v", v, ok)
	}
	if v, ok := opts.Int("n"); !ok || v != 7 {
		t.Errorf("Int(n) = %d, %v", v, ok)
	}
	if _, ok := opts.Int("ratio"); ok {
		t.Error("Int(ratio) accepted a fraction")
	}
	if _, ok := opts.Int("missing"); ok {
		t.Error("Int(missing) found a value")
	}
	if v, ok := opts.Bool("public"); !ok || !v {
		t.Errorf("Bool(public) = %v, %v", v, ok)
	}
}

func TestReplyWithoutReplier(t *testing.T) {
	in := &Interaction{}
	if err := in.ReplyEphemeral(context.Background(), "hi"); err == nil {
		t.Fatal("expected error")
	}

	var got Response
	in.Replier = ReplierFunc(func(_ context.Context, r Response) error {
		got = r
		return nil
	})
	if err := in.ReplyEphemeral(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}
	if got.Content != "hi" || !got.Ephemeral {
		t.Errorf("reply = %+v", got)
	}
}

type deferringReplier struct {
	events []string
}

func (r *deferringReplier) Defer(context.Context) error {
	r.events = append(r.events, "defer")
	return nil
}

func (r *deferringReplier) Reply(_ context.Context, resp Response) error {
	r.events = append(r.events, "reply:"+resp.Content)
	return nil
}

func TestDefer(t *testing.T) {
	plain := &Interaction{Replier: ReplierFunc(func(context.Context, Response) error { return nil })}
	if err := plain.Defer(context.Background()); err != nil {
		t.Fatalf("Defer on a plain replier: %v", err)
	}

	r := &deferringReplier{}
	in := &Interaction{Replier: r}
	if err := in.Defer(context.Background()); err != nil {
		t.Fatal(err)
	}
	_ = in.Reply(context.Background(), Response{Content: "done"})
	if len(r.events) != 2 || r.events[0] != "defer" || r.events[1] != "reply:done" {
		t.Errorf("events = %v", r.events)
	}
}
