package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/nfrund/charroom/internal/domain"
)

// DefaultReplyScript produces a canned acknowledgement in the character's
// voice. It sets the global "reply".
const DefaultReplyScript = `
text := import("text")

reply := character_name + ": "
if len(history) > 0 {
	reply += "(after " + string(len(history)) + " messages) "
}
reply += "I hear you. You said \"" + text.trim_space(message) + "\"."
`

// scriptVars are the globals visible to a reply script.
var scriptVars = []string{"character_name", "system_prompt", "message", "history"}

// ScriptedProvider synthesizes replies offline by running a tengo script.
// A compiled script is cloned for each call so calls may run concurrently.
type ScriptedProvider struct {
	mu       sync.Mutex
	compiled *tengo.Compiled
}

var _ Provider = (*ScriptedProvider)(nil)

// NewScriptedProvider compiles src. An empty src uses DefaultReplyScript.
func NewScriptedProvider(src string) (*ScriptedProvider, error) {
	if strings.TrimSpace(src) == "" {
		src = DefaultReplyScript
	}

	script := tengo.NewScript([]byte(src))
	script.SetImports(stdlib.GetModuleMap("text", "fmt", "math"))
	script.SetMaxAllocs(100000)
	for _, name := range scriptVars {
		var initial any = ""
		if name == "history" {
			initial = []any{}
		}
		if err := script.Add(name, initial); err != nil {
			return nil, fmt.Errorf("declare script variable %s: %w", name, err)
		}
	}

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile reply script: %w", err)
	}
	if !compiled.IsDefined("reply") {
		return nil, errors.New("reply script must define a global named reply")
	}
	return &ScriptedProvider{compiled: compiled}, nil
}

func (p *ScriptedProvider) Name() string { return domain.ProviderTemplate }

func (p *ScriptedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	p.mu.Lock()
	run := p.compiled.Clone()
	p.mu.Unlock()

	history := make([]any, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, map[string]any{"role": string(turn.Role), "content": turn.Content, "name": turn.Name})
	}

	values := map[string]any{
		"character_name": req.CharacterName,
		"system_prompt":  req.SystemPrompt,
		"message":        req.Message,
		"history":        history,
	}
	for name, v := range values {
		if err := run.Set(name, v); err != nil {
			return nil, &domain.ProviderError{Kind: domain.ProviderBadResponse, Provider: p.Name(), Err: err}
		}
	}

	if err := run.RunContext(ctx); err != nil {
		kind := domain.ProviderBadResponse
		if errors.Is(err, context.DeadlineExceeded) {
			kind = domain.ProviderTimeout
		}
		return nil, &domain.ProviderError{Kind: kind, Provider: p.Name(), Err: err}
	}

	reply := strings.TrimSpace(run.Get("reply").String())
	if reply == "" {
		return nil, &domain.ProviderError{Kind: domain.ProviderBadResponse, Provider: p.Name(), Err: errors.New("script produced an empty reply")}
	}
	return &Response{Content: reply, Model: domain.ProviderTemplate}, nil
}
