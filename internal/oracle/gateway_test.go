package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// scriptedClient returns queued replies in order; an empty queue yields an
// error so retry exhaustion is observable.
type scriptedClient struct {
	replies []string
	errs    []error
	calls   int
	lastReq openai.ChatCompletionRequest
}

func (c *scriptedClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.calls++
	c.lastReq = req
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		if err != nil {
			return openai.ChatCompletionResponse{}, err
		}
	}
	if len(c.replies) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("no scripted reply")
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: r},
		}},
	}, nil
}

func noSleep(ctx context.Context, d time.Duration) {}

type tuitionOut struct {
	Total      float64 `json:"total_tuition"`
	Currency   string  `json:"currency"`
	SourceURL  string  `json:"source_url"`
	Confidence float64 `json:"confidence"`
}

const tuitionTestSchema = `{"total_tuition": 90000, "currency": "USD", "source_url": "https://example.edu/tuition", "confidence": 0.8}`

func TestExtract_ValidFirstAttempt(t *testing.T) {
	cc := &scriptedClient{replies: []string{
		`{"total_tuition": 90000, "currency": "USD", "source_url": "https://www.stanford.edu/tuition", "confidence": 0.85}`,
	}}
	g := &Gateway{Client: cc, Model: "m", Sleep: noSleep}
	got := Extract(context.Background(), g, "tuition", "content", tuitionTestSchema, tuitionOut{})
	if got.Total != 90000 || got.Currency != "USD" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if cc.calls != 1 {
		t.Fatalf("expected 1 call, got %d", cc.calls)
	}
}

func TestExtract_StripsMarkdownFences(t *testing.T) {
	cc := &scriptedClient{replies: []string{
		"```json\n{\"total_tuition\": 90000, \"currency\": \"USD\", \"source_url\": \"https://www.stanford.edu/t\", \"confidence\": 0.85}\n```",
	}}
	g := &Gateway{Client: cc, Model: "m", Sleep: noSleep}
	got := Extract(context.Background(), g, "tuition", "content", tuitionTestSchema, tuitionOut{})
	if got.Total != 90000 {
		t.Fatalf("fenced JSON not parsed: %+v", got)
	}
}

func TestExtract_RetriesOnMissingField(t *testing.T) {
	cc := &scriptedClient{replies: []string{
		`{"total_tuition": 90000, "currency": "USD"}`, // missing source_url, confidence
		`{"total_tuition": 80000, "currency": "USD", "source_url": "https://www.stanford.edu/t", "confidence": 0.8}`,
	}}
	g := &Gateway{Client: cc, Model: "m", Sleep: noSleep}
	got := Extract(context.Background(), g, "tuition", "content", tuitionTestSchema, tuitionOut{})
	if got.Total != 80000 {
		t.Fatalf("expected second attempt to win: %+v", got)
	}
	if cc.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", cc.calls)
	}
}

func TestExtract_RejectsPlaceholderSource(t *testing.T) {
	cc := &scriptedClient{replies: []string{
		`{"total_tuition": 90000, "currency": "USD", "source_url": "https://example.com/tuition", "confidence": 0.9}`,
		`{"total_tuition": 90000, "currency": "USD", "source_url": "https://official-university-source.com/x", "confidence": 0.9}`,
	}}
	g := &Gateway{Client: cc, Model: "m", Sleep: noSleep}
	fb := tuitionOut{Total: 1, Currency: "USD"}
	got := Extract(context.Background(), g, "tuition", "content", tuitionTestSchema, fb)
	if got != fb {
		t.Fatalf("placeholder sources must exhaust into fallback, got %+v", got)
	}
	if cc.calls != 2 {
		t.Fatalf("expected exactly the retry budget of 2 calls, got %d", cc.calls)
	}
}

func TestExtract_FallbackNeverErrors(t *testing.T) {
	cc := &scriptedClient{} // every call errors
	g := &Gateway{Client: cc, Model: "m", Sleep: noSleep}
	fb := tuitionOut{Total: 42}
	got := Extract(context.Background(), g, "tuition", "content", tuitionTestSchema, fb)
	if got != fb {
		t.Fatalf("expected fallback, got %+v", got)
	}
}

func TestExtract_StopsWhenContextCancelled(t *testing.T) {
	cc := &scriptedClient{}
	g := &Gateway{Client: cc, Model: "m", Sleep: noSleep}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fb := tuitionOut{Total: 7}
	got := Extract(ctx, g, "tuition", "content", tuitionTestSchema, fb)
	if got != fb {
		t.Fatalf("expected fallback under cancelled context, got %+v", got)
	}
	if cc.calls != 0 {
		t.Fatalf("cancelled context must not issue calls, got %d", cc.calls)
	}
}

func TestSearch_SingleAttemptFallback(t *testing.T) {
	cc := &scriptedClient{} // errors
	g := &Gateway{Client: cc, Model: "m", Sleep: noSleep}
	got := g.Search(context.Background(), "tuition at Stanford", "fallback text")
	if got != "fallback text" {
		t.Fatalf("got %q", got)
	}
	if cc.calls != 1 {
		t.Fatalf("search must not retry, got %d calls", cc.calls)
	}
}

func TestSearch_UsesSearchModel(t *testing.T) {
	cc := &scriptedClient{replies: []string{"results"}}
	g := &Gateway{Client: cc, Model: "m", SearchModel: "sm", Sleep: noSleep}
	if got := g.Search(context.Background(), "q", "fb"); got != "results" {
		t.Fatalf("got %q", got)
	}
	if cc.lastReq.Model != "sm" {
		t.Fatalf("expected search model, got %q", cc.lastReq.Model)
	}
}

func TestChat_EmptyChoices(t *testing.T) {
	cc := &scriptedClient{replies: []string{""}}
	g := &Gateway{Client: cc, Model: "m"}
	if _, err := g.Chat(context.Background(), "m", "sys", "user", 0, 100); !errors.Is(err, ErrNoChoices) {
		t.Fatalf("expected ErrNoChoices, got %v", err)
	}
}

func TestChat_CacheRoundTrip(t *testing.T) {
	cc := &scriptedClient{replies: []string{"answer"}}
	g := &Gateway{Client: cc, Model: "m", Cache: &Cache{Dir: t.TempDir()}}
	first, err := g.Chat(context.Background(), "m", "sys", "user", 0, 100)
	if err != nil {
		t.Fatalf("first chat: %v", err)
	}
	second, err := g.Chat(context.Background(), "m", "sys", "user", 0, 100)
	if err != nil {
		t.Fatalf("second chat: %v", err)
	}
	if first != "answer" || second != "answer" {
		t.Fatalf("got %q then %q", first, second)
	}
	if cc.calls != 1 {
		t.Fatalf("second call should hit the cache, got %d backend calls", cc.calls)
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, c := range cases {
		if got := StripFences(c.in); got != c.want {
			t.Fatalf("StripFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidSourceURL(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"https://www.stanford.edu/tuition", true},
		{"http://immi.homeaffairs.gov.au", true},
		{"", false},
		{"not a url", false},
		{"ftp://files.example.org", false},
		{"https://example.com/anything", false},
		{"https://placeholder.edu/x", false},
		{"https://official-university-source.com/fees", false},
		{"https://localhost/x", false},
		{"https://大学.edu/学费", false},
	}
	for _, c := range cases {
		if got := ValidSourceURL(c.in); got != c.want {
			t.Fatalf("ValidSourceURL(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestKeyFrom_Deterministic(t *testing.T) {
	a := KeyFrom("m", "prompt")
	b := KeyFrom("m", "prompt")
	if a != b {
		t.Fatal("same inputs must hash equal")
	}
	if a == KeyFrom("other", "prompt") {
		t.Fatal("model must participate in the key")
	}
}
