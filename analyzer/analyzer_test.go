package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"abapai/config"
	"abapai/model"
	"abapai/provider"
	"abapai/provider/testutil"
	"abapai/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCompleter struct {
	calls   int
	prompt  string
	cfg     model.ClientConfig
	respond func(prompt string) model.AnalysisResult
}

func (c *recordingCompleter) DispatchCompletion(ctx context.Context, cfg model.ClientConfig, prompt string) model.AnalysisResult {
	c.calls++
	c.prompt = prompt
	c.cfg = cfg
	if c.respond != nil {
		return c.respond(prompt)
	}
	return model.Success("analysis")
}

type failingRecorder struct{}

func (failingRecorder) Save(*storage.Analysis) error { return errors.New("read-only") }

func settings(prefs map[string]string) *config.Settings {
	return config.NewSettings(config.DefaultConfig(), config.NewMapPreferences(prefs), nil).
		WithEnv(func(string) string { return "" })
}

func TestBuildPromptDefaultTemplate(t *testing.T) {
	prompt := BuildPrompt("", "ZERODIVIDE", "lv_a / lv_b")

	assert.Contains(t, prompt, "Dump: ZERODIVIDE")
	assert.Contains(t, prompt, "---\nlv_a / lv_b\n---")
	assert.Contains(t, prompt, "1. Root cause analysis")
	assert.Contains(t, prompt, "4. Any relevant SAP notes")
	assert.NotContains(t, prompt, PlaceholderTitle)
	assert.NotContains(t, prompt, PlaceholderContent)
}

func TestBuildPromptCustomTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		title    string
		content  string
		want     string
	}{
		{"both placeholders", "T={title} C={dump_content}", "X", "Y", "T=X C=Y"},
		{"absent title", "T={title}", "", "Y", "T=Unknown"},
		{"repeated placeholder", "{dump_content}|{dump_content}", "X", "Y", "Y|Y"},
		{"no placeholders", "static", "X", "Y", "static"},
		{"placeholder inside dump", "{title}: {dump_content}", "A", "see {title}", "A: see {title}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildPrompt(tt.template, tt.title, tt.content))
		})
	}
}

func TestAnalyzeAppendsDumpContent(t *testing.T) {
	c := &recordingCompleter{}
	s := NewService(settings(map[string]string{config.PrefProvider: "OLLAMA"}), c)

	result := s.Analyze(context.Background(), "title", testutil.SampleDump)

	require.True(t, result.IsSuccess())
	assert.Equal(t, "analysis\n\nOriginal Dump Content:\n"+testutil.SampleDump, result.Text())
	assert.Equal(t, 1, c.calls)
	assert.Contains(t, c.prompt, testutil.SampleDump)
	assert.Equal(t, model.ProviderOllama, c.cfg.Provider)
}

func TestAnalyzeWithoutAppend(t *testing.T) {
	c := &recordingCompleter{}
	s := NewService(settings(map[string]string{config.PrefAppendDump: "false"}), c)

	result := s.Analyze(context.Background(), "title", "dump")

	require.True(t, result.IsSuccess())
	assert.Equal(t, "analysis", result.Text())
}

func TestAnalyzeFailureIsNotAppended(t *testing.T) {
	c := &recordingCompleter{respond: func(string) model.AnalysisResult {
		return model.Failure("[OpenAI] Completion failed: HTTP 401 - bad key")
	}}
	s := NewService(settings(nil), c)

	result := s.Analyze(context.Background(), "title", "dump")

	assert.False(t, result.IsSuccess())
	assert.Equal(t, "[OpenAI] Completion failed: HTTP 401 - bad key", result.Message())
}

func TestAnalyzeUsesCustomTemplate(t *testing.T) {
	c := &recordingCompleter{}
	s := NewService(settings(map[string]string{config.PrefPromptTemplate: "Explain {title}: {dump_content}"}), c)

	s.Analyze(context.Background(), "", "boom")

	assert.Equal(t, "Explain Unknown: boom", c.prompt)
}

func TestAnalyzeBlankContent(t *testing.T) {
	c := &recordingCompleter{}
	s := NewService(settings(nil), c)

	result := s.Analyze(context.Background(), "title", "  \n ")

	assert.False(t, result.IsSuccess())
	assert.Equal(t, "[Google AI (Gemini)] No content to analyze.", result.Message())
	assert.Equal(t, 0, c.calls)
}

func TestAnalyzeMissingKeyThroughDispatcher(t *testing.T) {
	mock := testutil.NewMockGateway(model.ProviderOpenAI)
	d := provider.NewDispatcher(provider.WithGatewayFactory(func(cfg model.ClientConfig, _ ...provider.GatewayOption) (model.Gateway, error) {
		return mock, nil
	}))
	s := NewService(settings(map[string]string{config.PrefProvider: "OPENAI"}), d)

	result := s.Analyze(context.Background(), "title", testutil.SampleDump)

	assert.False(t, result.IsSuccess())
	assert.True(t, strings.HasPrefix(result.Message(), "[OpenAI] API key is not configured for OpenAI"))
	assert.Equal(t, 0, mock.CompleteCalls())
}

func TestAnalyzeRecordsHistory(t *testing.T) {
	h, err := storage.NewHistoryStorage(t.TempDir())
	require.NoError(t, err)

	s := NewService(settings(map[string]string{config.PrefProvider: "OLLAMA"}), &recordingCompleter{}, WithHistory(h))
	s.Analyze(context.Background(), "ZERODIVIDE", "dump text")

	list, err := h.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ZERODIVIDE", list[0].Title)
	assert.Equal(t, "OLLAMA", list[0].Provider)
	assert.True(t, list[0].Success)

	entry, err := h.Load(list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "dump text", entry.Dump)
}

func TestAnalyzeHistoryErrorDoesNotFail(t *testing.T) {
	s := NewService(settings(nil), &recordingCompleter{}, WithHistory(failingRecorder{}))
	result := s.Analyze(context.Background(), "t", "dump")
	assert.True(t, result.IsSuccess())
}

func TestAnalyzeSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ST22_ZERODIVIDE.txt")
	require.NoError(t, os.WriteFile(path, []byte("file dump"), 0600))

	c := &recordingCompleter{}
	s := NewService(settings(nil), c)

	result := s.AnalyzeSource(context.Background(), FileSource{Path: path})
	require.True(t, result.IsSuccess())
	assert.Contains(t, c.prompt, "Dump: ST22_ZERODIVIDE")
	assert.Contains(t, c.prompt, "file dump")

	result = s.AnalyzeSource(context.Background(), FileSource{Path: filepath.Join(t.TempDir(), "missing.txt")})
	assert.False(t, result.IsSuccess())
	assert.Contains(t, result.Message(), "failed to read dump file")
}

func TestFileSourceStdin(t *testing.T) {
	src := FileSource{Path: "-", Name: "piped", Stdin: strings.NewReader("from stdin")}

	content, err := src.Content()
	require.NoError(t, err)
	assert.Equal(t, "from stdin", content)
	assert.Equal(t, "piped", src.Title())

	assert.Equal(t, "", FileSource{Path: "-"}.Title())
}

func TestTextSource(t *testing.T) {
	var src DumpSource = TextSource{Name: "n", Text: "t"}
	content, err := src.Content()
	require.NoError(t, err)
	assert.Equal(t, "t", content)
	assert.Equal(t, "n", src.Title())
}
