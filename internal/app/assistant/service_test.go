package assistant_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/costa-brava-bikers/clubhouse-api/internal/app/assistant"
)

type fakeGen struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeGen) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func TestRouteBriefing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cases := []struct {
		name string
		gen  *fakeGen
		want string
	}{
		{"text", &fakeGen{text: "  Twisties all day.  "}, "Twisties all day."},
		{"empty", &fakeGen{text: ""}, assistant.BriefingEmptyFallback},
		{"error", &fakeGen{err: errors.New("quota")}, assistant.BriefingErrorFallback},
	}
	for _, tc := range cases {
		svc := assistant.NewService(tc.gen, nil)
		if got := svc.RouteBriefing(ctx, "Coastal Run", "Girona", "Cadaqués", 240); got != tc.want {
			t.Fatalf("%s: RouteBriefing()=%q, want %q", tc.name, got, tc.want)
		}
		p := tc.gen.prompts[0]
		if !strings.Contains(p, `"Coastal Run"`) || !strings.Contains(p, "240km") || !strings.Contains(p, `"Cadaqués"`) {
			t.Fatalf("%s: prompt missing trip details: %q", tc.name, p)
		}
	}
}

func TestRouteBriefing_Unconfigured(t *testing.T) {
	t.Parallel()

	svc := assistant.NewService(nil, nil)
	if got := svc.RouteBriefing(context.Background(), "x", "a", "b", 12.5); got != assistant.BriefingErrorFallback {
		t.Fatalf("RouteBriefing()=%q", got)
	}
}

func TestChatReply_UsesLastFiveMessages(t *testing.T) {
	t.Parallel()

	gen := &fakeGen{text: "Check your chain tension."}
	svc := assistant.NewService(gen, nil)

	var msgs []string
	for i := 1; i <= 7; i++ {
		msgs = append(msgs, fmt.Sprintf("msg-%d", i))
	}
	if got := svc.ChatReply(context.Background(), msgs); got != "Check your chain tension." {
		t.Fatalf("ChatReply()=%q", got)
	}
	p := gen.prompts[0]
	if strings.Contains(p, "msg-1\n") || strings.Contains(p, "msg-2\n") {
		t.Fatalf("prompt includes messages beyond context window: %q", p)
	}
	if !strings.Contains(p, "msg-3\nmsg-4\nmsg-5\nmsg-6\nmsg-7") {
		t.Fatalf("prompt missing recent context: %q", p)
	}
}

func TestChatReply_Fallbacks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := assistant.NewService(&fakeGen{}, nil).ChatReply(ctx, []string{"@ai hi"}); got != assistant.ChatEmptyFallback {
		t.Fatalf("empty: ChatReply()=%q", got)
	}
	if got := assistant.NewService(&fakeGen{err: errors.New("down")}, nil).ChatReply(ctx, []string{"@ai hi"}); got != assistant.ChatErrorFallback {
		t.Fatalf("error: ChatReply()=%q", got)
	}
}
