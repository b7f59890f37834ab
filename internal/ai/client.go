package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"apptcal/config"
	"apptcal/internal/logging"
)

// ErrNoProvider is returned by Call when nothing is configured or installed
var ErrNoProvider = errors.New("no AI provider available - configure ai_providers in config.yml or install claude, codex, gemini or ollama")

// provider is a configured AI backend ready to use
type provider struct {
	config    config.AIProvider
	apiClient *openai.Client // nil for CLI providers
}

// Client sends prompts to the configured providers in order
type Client struct {
	providers []provider
}

// NewClient builds a client from configured providers.
// API providers come first, then CLI providers, then auto-detected CLI tools.
func NewClient(configured []config.AIProvider) *Client {
	client := &Client{}

	for _, p := range configured {
		if p.Model == "" || p.Type != config.AIProviderTypeAPI || p.APIKey == "" {
			continue
		}
		baseURL := p.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		apiClient := openai.NewClient(
			option.WithAPIKey(p.APIKey),
			option.WithBaseURL(baseURL),
		)
		client.providers = append(client.providers, provider{config: p, apiClient: &apiClient})
	}

	for _, p := range configured {
		if p.Model == "" || p.Type != config.AIProviderTypeCLI {
			continue
		}
		if commandExists(p.Name) {
			client.providers = append(client.providers, provider{config: p})
		}
	}

	if len(client.providers) == 0 {
		client.providers = detectProviders()
	}
	return client
}

// Available reports whether at least one provider can be called
func (c *Client) Available() bool {
	return len(c.providers) > 0
}

// Provider returns the first provider as name/model
func (c *Client) Provider() string {
	if len(c.providers) == 0 {
		return ""
	}
	p := c.providers[0]
	if p.config.Name != "" {
		return p.config.Name + "/" + p.config.Model
	}
	return p.config.Model
}

// maxAttempts caps how many providers are tried per call
const maxAttempts = 3

// Call sends prompt to each provider in turn until one answers
func (c *Client) Call(ctx context.Context, prompt string) (string, error) {
	if len(c.providers) == 0 {
		return "", ErrNoProvider
	}

	var failed []string
	limit := min(len(c.providers), maxAttempts)
	for i := 0; i < limit; i++ {
		p := c.providers[i]

		var result string
		var err error
		if p.apiClient != nil {
			result, err = callAPI(ctx, *p.apiClient, p.config.Model, prompt)
		} else {
			result, err = callCLI(ctx, p.config.Name, p.config.Model, prompt)
		}
		if err == nil {
			return result, nil
		}

		name := p.config.Name
		if name == "" {
			name = p.config.Model
		}
		logging.Log.Warn("ai provider failed", zap.String("provider", name), zap.Error(err))
		failed = append(failed, name)
	}

	return "", errors.New("AI failed: " + strings.Join(failed, ", ") + " all failed")
}

// cliTool describes how to run one AI command line tool
type cliTool struct {
	defaultModel string
	args         func(model, prompt string) []string
	// parse extracts the answer from stdout; nil means stdout is the answer
	parse func(string) string
}

// cliTools in order of preference for auto-detection
var cliTools = []struct {
	name string
	cliTool
}{
	{"claude", cliTool{"haiku", func(model, prompt string) []string {
		return []string{"-p", prompt, "--model", model, "--output-format", "json", "--no-session-persistence"}
	}, parseClaudeOutput}},
	{"codex", cliTool{"o4-mini", func(model, prompt string) []string {
		return []string{"exec", prompt, "--model", model, "--json"}
	}, parseCodexOutput}},
	{"gemini", cliTool{"gemini-2.5-flash", func(model, prompt string) []string {
		return []string{"-p", prompt, "-m", model, "--output-format", "json"}
	}, parseGeminiOutput}},
	{"ollama", cliTool{"llama3.2:3b", func(model, prompt string) []string {
		return []string{"run", model, prompt}
	}, nil}},
}

func lookupTool(name string) (cliTool, bool) {
	for _, t := range cliTools {
		if t.name == name {
			return t.cliTool, true
		}
	}
	return cliTool{}, false
}

func callCLI(ctx context.Context, name, model, prompt string) (string, error) {
	tool, ok := lookupTool(name)
	if !ok {
		return "", errors.New("unknown CLI provider: " + name)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, tool.args(model, prompt)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", errors.New("AI call failed: " + msg)
	}

	out := stdout.String()
	if tool.parse != nil {
		out = tool.parse(out)
	}
	return strings.TrimSpace(out), nil
}

func callAPI(ctx context.Context, client openai.Client, model, prompt string) (string, error) {
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", errors.New("API call failed: " + err.Error())
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("API returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// parseClaudeOutput extracts the result from claude's JSON output
func parseClaudeOutput(output string) string {
	var response struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal([]byte(output), &response); err != nil {
		return output
	}
	return response.Result
}

// parseGeminiOutput extracts the response from gemini's JSON output
func parseGeminiOutput(output string) string {
	start := strings.Index(output, "{")
	if start == -1 {
		return output
	}
	var response struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal([]byte(output[start:]), &response); err != nil {
		return output
	}
	return response.Response
}

// parseCodexOutput returns the last agent message of codex's JSON lines
func parseCodexOutput(output string) string {
	var last string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var event struct {
			Type string `json:"type"`
			Item struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"item"`
		}
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}
		if event.Type == "item.completed" && event.Item.Type == "agent_message" {
			last = event.Item.Text
		}
	}
	return last
}

// detectProviders finds installed CLI tools, in order of preference
func detectProviders() []provider {
	var providers []provider
	for _, t := range cliTools {
		if commandExists(t.name) {
			providers = append(providers, provider{
				config: config.AIProvider{Type: config.AIProviderTypeCLI, Name: t.name, Model: t.defaultModel},
			})
		}
	}
	return providers
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
