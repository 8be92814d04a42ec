package processor

import (
	"github.com/nguyentantai21042004/summary-flow/internal/config"
	"github.com/nguyentantai21042004/summary-flow/internal/logger"
	"github.com/nguyentantai21042004/summary-flow/internal/summarizer"
	"github.com/nguyentantai21042004/summary-flow/pkg/executor"
)

type implProcessor struct {
	cfg        *config.Config
	executor   executor.Executor
	summarizer summarizer.Summarizer
	logger     logger.Logger
	sem        *runSlots
}

// New creates a new Processor instance
func New(cfg *config.Config, exec executor.Executor, sum summarizer.Summarizer, log logger.Logger) Processor {
	return &implProcessor{
		cfg:        cfg,
		executor:   exec,
		summarizer: sum,
		logger:     log,
		sem:        newRunSlots(cfg.Performance.MaxConcurrent),
	}
}

// withLogger returns a shallow copy that logs through log
func (p *implProcessor) withLogger(log logger.Logger) *implProcessor {
	cp := *p
	cp.logger = log
	return &cp
}
