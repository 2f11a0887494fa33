// Package errors 定义 sentinel-weather 的结构化错误码。
//
// 错误码格式为 AABBCCC：AA 为服务，BB 为类别，CCC 为序号。
// 派生出的错误（WithCause、WithMessage）与原错误码在 errors.Is 下相等：
//
//	err := errors.ErrSourceTransient.WithCause(dialErr)
//	errors.Is(err, errors.ErrSourceTransient) // true
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/grpc/codes"
)

// Errno 带错误码与中英文消息的错误。
type Errno struct {
	Code      int        `json:"code"`
	HTTP      int        `json:"-"`
	GRPCCode  codes.Code `json:"-"`
	MessageEN string     `json:"message"`
	MessageZH string     `json:"message_zh,omitempty"`

	cause  error
	custom bool
}

// New creates an Errno. 需要通过 Register 注册后才能被 Lookup 找到。
func New(code, httpStatus int, grpcCode codes.Code, messageEN, messageZH string) *Errno {
	return &Errno{Code: code, HTTP: httpStatus, GRPCCode: grpcCode, MessageEN: messageEN, MessageZH: messageZH}
}

func (e *Errno) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("errno %d: %s", e.Code, e.MessageEN)
	}
	return fmt.Sprintf("errno %d: %s: %v", e.Code, e.MessageEN, e.cause)
}

func (e *Errno) Unwrap() error { return e.cause }

// Is 按错误码比较。
func (e *Errno) Is(target error) bool {
	t, ok := target.(*Errno)
	return ok && t.Code == e.Code
}

// WithCause 返回附带底层原因的副本。
func (e *Errno) WithCause(cause error) *Errno {
	c := *e
	c.cause = cause
	return &c
}

// WithMessage 返回替换消息的副本，此后 Message 不再按语言切换。
func (e *Errno) WithMessage(msg string) *Errno {
	c := *e
	c.MessageEN = msg
	c.custom = true
	return &c
}

// WithMessagef is WithMessage with formatting.
func (e *Errno) WithMessagef(format string, args ...interface{}) *Errno {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// Message 按语言返回消息，lang 可直接传入 Accept-Language 头。
func (e *Errno) Message(lang string) string {
	if !e.custom && e.MessageZH != "" && strings.HasPrefix(strings.ToLower(strings.TrimSpace(lang)), "zh") {
		return e.MessageZH
	}
	return e.MessageEN
}

// HTTPStatus 未设置时为 500。
func (e *Errno) HTTPStatus() int {
	if e.HTTP == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTP
}

// GRPCStatus 未设置时为 Internal。
func (e *Errno) GRPCStatus() codes.Code {
	if e.GRPCCode == codes.OK && e.Code != 0 {
		return codes.Internal
	}
	return e.GRPCCode
}

var registry = struct {
	sync.RWMutex
	m map[int]*Errno
}{m: make(map[int]*Errno)}

// Register 注册错误码，重复注册直接 panic。
func Register(e *Errno) *Errno {
	registry.Lock()
	defer registry.Unlock()
	if prev, ok := registry.m[e.Code]; ok {
		panic(fmt.Sprintf("errno code %d already registered: %s", e.Code, prev.MessageEN))
	}
	registry.m[e.Code] = e
	return e
}

// Lookup returns the registered Errno for code.
func Lookup(code int) (*Errno, bool) {
	registry.RLock()
	defer registry.RUnlock()
	e, ok := registry.m[code]
	return e, ok
}

// FromError 提取 err 链中的 Errno，没有时包装为 ErrInternal。
func FromError(err error) *Errno {
	if err == nil {
		return nil
	}
	var e *Errno
	if As(err, &e) {
		return e
	}
	return ErrInternal.WithCause(err)
}
