package core

import (
	"fmt"
	"log/slog"
	"sync"
)

// WarningCode classifies soft failures.
type WarningCode string

const (
	WarnUnknownEnvironment  WarningCode = "unknownenvironment"
	WarnImageMissing        WarningCode = "imagemissing"
	WarnAllImagesMissing    WarningCode = "allimagesmissing"
	WarnUnsupportedImage    WarningCode = "unsupportedimagetype"
	WarnBadPercentage       WarningCode = "badpercentage"
	WarnChangedPercentage   WarningCode = "changedpercentage"
	WarnNoAnswers           WarningCode = "noanswers"
	WarnUnknownExportFormat WarningCode = "unknownexportformat"
	WarnEmbedError          WarningCode = "embederror"
)

// Warning is a recorded problem that did not abort the call.
type Warning struct {
	Code     WarningCode `json:"code"`
	Question string      `json:"question,omitempty"`
	Detail   string      `json:"detail,omitempty"`
}

func (w Warning) String() string {
	if w.Question == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Detail)
	}
	return fmt.Sprintf("%s: %s (%s)", w.Code, w.Detail, w.Question)
}

// WarningSink receives warnings as they occur.
type WarningSink interface {
	Warn(Warning)
}

// SinkFunc adapts a function to WarningSink.
type SinkFunc func(Warning)

func (f SinkFunc) Warn(w Warning) { f(w) }

// WarningLog accumulates warnings in order. Each call should own its log.
type WarningLog struct {
	mu    sync.Mutex
	items []Warning
	next  WarningSink
}

// NewWarningLog returns a log that also forwards to next when next is not nil.
func NewWarningLog(next WarningSink) *WarningLog {
	return &WarningLog{next: next}
}

func (l *WarningLog) Warn(w Warning) {
	l.mu.Lock()
	l.items = append(l.items, w)
	l.mu.Unlock()
	if l.next != nil {
		l.next.Warn(w)
	}
}

// Warnings returns a copy of everything recorded so far.
func (l *WarningLog) Warnings() []Warning {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Warning(nil), l.items...)
}

// LogSink forwards warnings to a structured logger.
func LogSink(logger *slog.Logger) WarningSink {
	return SinkFunc(func(w Warning) {
		logger.Warn(w.Detail, "code", string(w.Code), "question", w.Question)
	})
}
