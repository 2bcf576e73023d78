package apperr

import (
	"errors"
	"fmt"
)

// Kind 区分一次发布流程中失败的类别
type Kind int

const (
	KindFetch     Kind = iota + 1 // 无法访问日报接口，或返回非 200 状态
	KindUpstream                  // 日报接口可达，但报告业务失败
	KindMalformed                 // 日报接口返回的数据缺少必需字段
	KindConfig                    // 缺少必需凭证，在任何网络调用之前发现
	KindPublish                   // 创建 Issue 失败
)

func (k Kind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindUpstream:
		return "upstream"
	case KindMalformed:
		return "malformed_response"
	case KindConfig:
		return "config"
	case KindPublish:
		return "publish"
	default:
		return "unknown"
	}
}

// Error 是带类别标签的错误；StatusCode 与 Body 仅在有 HTTP 响应时填充
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	Message    string
	Body       string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: %s (status %d): %s", e.Op, msg, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s (status %d)", e.Op, msg, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable 传输层失败（拉取、发布）看起来可以重试；配置与上游业务错误不可重试。
// 目前没有任何阶段会自动重试。
func (e *Error) Retryable() bool {
	return e.Kind == KindFetch || e.Kind == KindPublish
}

func FetchError(op string, status int, err error) *Error {
	msg := "request failed"
	if status != 0 {
		msg = "unexpected status"
	}
	return &Error{Kind: KindFetch, Op: op, StatusCode: status, Message: msg, Err: err}
}

func UpstreamError(op, message string) *Error {
	if message == "" {
		message = "upstream reported failure"
	}
	return &Error{Kind: KindUpstream, Op: op, Message: message}
}

func MalformedResponseError(op, message string, err error) *Error {
	return &Error{Kind: KindMalformed, Op: op, Message: message, Err: err}
}

func ConfigError(op, message string) *Error {
	return &Error{Kind: KindConfig, Op: op, Message: message}
}

func PublishError(op string, status int, body string, err error) *Error {
	msg := "request failed"
	if status != 0 {
		msg = "unexpected status"
	}
	return &Error{Kind: KindPublish, Op: op, StatusCode: status, Message: msg, Body: body, Err: err}
}

// KindOf 返回错误链中第一个 *Error 的类别，找不到时返回 0
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
