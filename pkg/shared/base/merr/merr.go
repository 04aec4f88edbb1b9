// 指示: miu200521358
// Package merr はエラーID付きエラーを提供する。
package merr

import (
	"errors"
	"fmt"
)

// エラーID一覧。
const (
	// ErrorIDInvalidState は不正状態でのAPI呼び出しを表す。
	ErrorIDInvalidState = "InvalidState"
	// ErrorIDDegenerateTransform は非有限なボーン変換入力を表す。
	ErrorIDDegenerateTransform = "DegenerateTransform"
	// ErrorIDIoExtInvalid は未対応拡張子の入力を表す。
	ErrorIDIoExtInvalid = "IoExtInvalid"
	// ErrorIDIoFileNotFound は入力ファイル不在を表す。
	ErrorIDIoFileNotFound = "IoFileNotFound"
	// ErrorIDIoParseFailed は入力解析失敗を表す。
	ErrorIDIoParseFailed = "IoParseFailed"
)

// IDError はエラーIDと原因を保持するエラー。
type IDError struct {
	id      string
	message string
	cause   error
}

// New はエラーID付きエラーを生成する。
func New(id string, message string, cause error) error {
	return &IDError{id: id, message: message, cause: cause}
}

// Error はエラーメッセージを返す。
func (e *IDError) Error() string {
	if e.cause == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %v", e.message, e.cause)
}

// Unwrap は原因エラーを返す。
func (e *IDError) Unwrap() error {
	return e.cause
}

// ID はエラーIDを返す。
func (e *IDError) ID() string {
	return e.id
}

// ExtractErrorID はエラー連鎖からエラーIDを取り出す。未分類は空文字列。
func ExtractErrorID(err error) string {
	var idError *IDError
	if errors.As(err, &idError) {
		return idError.ID()
	}
	return ""
}

// NewInvalidState は不正状態エラーを生成する。
func NewInvalidState(message string) error {
	return New(ErrorIDInvalidState, message, nil)
}

// NewDegenerateTransform は非有限変換エラーを生成する。
func NewDegenerateTransform(message string, cause error) error {
	return New(ErrorIDDegenerateTransform, message, cause)
}

// NewIoExtInvalid は未対応拡張子エラーを生成する。
func NewIoExtInvalid(path string, cause error) error {
	return New(ErrorIDIoExtInvalid, fmt.Sprintf("入力形式が未対応です: %s", path), cause)
}

// NewIoFileNotFound はファイル不在エラーを生成する。
func NewIoFileNotFound(path string, cause error) error {
	return New(ErrorIDIoFileNotFound, fmt.Sprintf("入力ファイルが見つかりません: %s", path), cause)
}

// NewIoParseFailed は解析失敗エラーを生成する。
func NewIoParseFailed(message string, cause error) error {
	return New(ErrorIDIoParseFailed, message, cause)
}
