// 指示: miu200521358
// Package logging はログ出力の契約と既定ロガーの登録を提供する。
package logging

import "sync"

// LogLevel はログレベルを表す。
type LogLevel int

const (
	// LOG_LEVEL_DEBUG はデバッグレベル。
	LOG_LEVEL_DEBUG LogLevel = iota
	// LOG_LEVEL_INFO は情報レベル。
	LOG_LEVEL_INFO
	// LOG_LEVEL_WARN は警告レベル。
	LOG_LEVEL_WARN
	// LOG_LEVEL_ERROR はエラーレベル。
	LOG_LEVEL_ERROR
)

// VerboseIndex は冗長ログの出力チャンネルを表す。
type VerboseIndex int

const (
	// VERBOSE_INDEX_SIMULATION はシミュレーション詳細ログチャンネル。
	VERBOSE_INDEX_SIMULATION VerboseIndex = iota
	// VERBOSE_INDEX_RIG_IO はリグ入出力詳細ログチャンネル。
	VERBOSE_INDEX_RIG_IO
)

// ILogger はログ出力の契約を表す。
type ILogger interface {
	// Debug はデバッグログを出力する。
	Debug(format string, params ...any)
	// Info は情報ログを出力する。
	Info(format string, params ...any)
	// Warn は警告ログを出力する。
	Warn(format string, params ...any)
	// Error はエラーログを出力する。
	Error(format string, params ...any)
	// SetLevel は出力レベルを設定する。
	SetLevel(level LogLevel)
	// Level は現在の出力レベルを返す。
	Level() LogLevel
	// SetVerboseEnabled は冗長チャンネルの有効状態を設定する。
	SetVerboseEnabled(index VerboseIndex, enabled bool)
	// IsVerboseEnabled は冗長チャンネルの有効状態を返す。
	IsVerboseEnabled(index VerboseIndex) bool
	// Verbose は有効な冗長チャンネルへログを出力する。
	Verbose(index VerboseIndex, format string, params ...any)
}

var (
	defaultLoggerMutex sync.RWMutex
	defaultLogger      ILogger = &nopLogger{level: LOG_LEVEL_INFO}
)

// DefaultLogger は既定ロガーを返す。
func DefaultLogger() ILogger {
	defaultLoggerMutex.RLock()
	defer defaultLoggerMutex.RUnlock()
	return defaultLogger
}

// SetDefaultLogger は既定ロガーを差し替える。nil は無視する。
func SetDefaultLogger(logger ILogger) {
	if logger == nil {
		return
	}
	defaultLoggerMutex.Lock()
	defer defaultLoggerMutex.Unlock()
	defaultLogger = logger
}

// nopLogger は出力破棄の初期ロガー。
type nopLogger struct {
	level LogLevel
}

func (l *nopLogger) Debug(format string, params ...any) {}
func (l *nopLogger) Info(format string, params ...any)  {}
func (l *nopLogger) Warn(format string, params ...any)  {}
func (l *nopLogger) Error(format string, params ...any) {}

func (l *nopLogger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *nopLogger) Level() LogLevel {
	return l.level
}

func (l *nopLogger) SetVerboseEnabled(index VerboseIndex, enabled bool) {}

func (l *nopLogger) IsVerboseEnabled(index VerboseIndex) bool {
	return false
}

func (l *nopLogger) Verbose(index VerboseIndex, format string, params ...any) {}
