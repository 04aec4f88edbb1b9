// 指示: miu200521358
// Package mlogging は logging.ILogger の標準実装を提供する。
package mlogging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/miu200521358/mu_vrm_spring/pkg/shared/base/logging"
)

// Logger は書き込み先指定のロガー実装。
type Logger struct {
	mutex   sync.Mutex
	writer  io.Writer
	level   logging.LogLevel
	verbose map[logging.VerboseIndex]bool
	nowFunc func() time.Time
}

// NewLogger はロガーを生成する。writer が nil の場合は標準エラー出力へ書く。
func NewLogger(writer io.Writer) *Logger {
	if writer == nil {
		writer = os.Stderr
	}
	return &Logger{
		writer:  writer,
		level:   logging.LOG_LEVEL_INFO,
		verbose: map[logging.VerboseIndex]bool{},
		nowFunc: time.Now,
	}
}

// Debug はデバッグログを出力する。
func (l *Logger) Debug(format string, params ...any) {
	l.write(logging.LOG_LEVEL_DEBUG, "DEBUG", format, params...)
}

// Info は情報ログを出力する。
func (l *Logger) Info(format string, params ...any) {
	l.write(logging.LOG_LEVEL_INFO, "INFO", format, params...)
}

// Warn は警告ログを出力する。
func (l *Logger) Warn(format string, params ...any) {
	l.write(logging.LOG_LEVEL_WARN, "WARN", format, params...)
}

// Error はエラーログを出力する。
func (l *Logger) Error(format string, params ...any) {
	l.write(logging.LOG_LEVEL_ERROR, "ERROR", format, params...)
}

// SetLevel は出力レベルを設定する。
func (l *Logger) SetLevel(level logging.LogLevel) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.level = level
}

// Level は現在の出力レベルを返す。
func (l *Logger) Level() logging.LogLevel {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.level
}

// SetVerboseEnabled は冗長チャンネルの有効状態を設定する。
func (l *Logger) SetVerboseEnabled(index logging.VerboseIndex, enabled bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.verbose[index] = enabled
}

// IsVerboseEnabled は冗長チャンネルの有効状態を返す。
func (l *Logger) IsVerboseEnabled(index logging.VerboseIndex) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.verbose[index]
}

// Verbose は有効な冗長チャンネルへログを出力する。
func (l *Logger) Verbose(index logging.VerboseIndex, format string, params ...any) {
	if !l.IsVerboseEnabled(index) {
		return
	}
	l.write(logging.LOG_LEVEL_DEBUG, "VERBOSE", format, params...)
}

// write はレベル判定付きで1行出力する。
func (l *Logger) write(level logging.LogLevel, tag string, format string, params ...any) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if tag != "VERBOSE" && level < l.level {
		return
	}
	timestamp := l.nowFunc().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(l.writer, "%s [%s] %s\n", timestamp, tag, fmt.Sprintf(format, params...))
}
