// Package analyzer turns an ABAP dump into an LLM analysis. It owns prompt
// construction; gateways only ever see the finished prompt.
package analyzer

import (
	"context"
	"strings"

	"abapai/config"
	"abapai/model"
	"abapai/storage"
)

// DumpContentSeparator precedes the original dump appended to a successful analysis.
const DumpContentSeparator = "\n\nOriginal Dump Content:\n"

// ConfigSource supplies the settings for one analysis. It is consulted on
// every call. *config.Settings implements it.
type ConfigSource interface {
	ClientConfig() model.ClientConfig
	PromptTemplate() string
	AppendDumpContent() bool
}

// Completer runs a prompt against the configured provider.
// *provider.Dispatcher implements it.
type Completer interface {
	DispatchCompletion(ctx context.Context, cfg model.ClientConfig, prompt string) model.AnalysisResult
}

// Recorder persists finished analyses. *storage.HistoryStorage implements it.
type Recorder interface {
	Save(a *storage.Analysis) error
}

type Service struct {
	source    ConfigSource
	completer Completer
	history   Recorder
}

type Option func(*Service)

// WithHistory records every analysis outcome in r.
func WithHistory(r Recorder) Option {
	return func(s *Service) {
		s.history = r
	}
}

func NewService(source ConfigSource, completer Completer, opts ...Option) *Service {
	s := &Service{
		source:    source,
		completer: completer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze builds the prompt for the dump and runs it. A blank dump fails
// without contacting the provider.
func (s *Service) Analyze(ctx context.Context, title, content string) model.AnalysisResult {
	cfg := s.source.ClientConfig()

	if strings.TrimSpace(content) == "" {
		return model.FailureFromError(model.NewProviderError(cfg.Provider, model.ErrorKindConfiguration, "No content to analyze.", nil))
	}

	prompt := BuildPrompt(s.source.PromptTemplate(), title, content)
	result := s.completer.DispatchCompletion(ctx, cfg, prompt)

	if result.IsSuccess() && s.source.AppendDumpContent() {
		result = result.Map(func(text string) string {
			return text + DumpContentSeparator + content
		})
	}

	s.record(cfg, title, content, result)
	return result
}

// AnalyzeSource reads src and analyzes it.
func (s *Service) AnalyzeSource(ctx context.Context, src DumpSource) model.AnalysisResult {
	content, err := src.Content()
	if err != nil {
		return model.Failure(err.Error())
	}
	return s.Analyze(ctx, src.Title(), content)
}

func (s *Service) record(cfg model.ClientConfig, title, content string, result model.AnalysisResult) {
	if s.history == nil {
		return
	}

	entry := &storage.Analysis{
		Title:    title,
		Provider: cfg.Provider.String(),
		Model:    cfg.Model,
		Success:  result.IsSuccess(),
		Result:   result.Text(),
		Message:  result.Message(),
		Dump:     content,
	}
	if err := s.history.Save(entry); err != nil {
		config.Logger.Warn().Err(err).Msg("failed to record analysis")
	}
}
