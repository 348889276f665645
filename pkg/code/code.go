package code

import (
	"fmt"
	"net/http"
)

// Code 统一业务状态码
// 每个 Code 携带业务码、HTTP 状态码和多语言消息
type Code struct {
	// 业务码
	code int
	// HTTP 状态码
	statusCode int
	// 状态
	status bool
	// 多语言消息
	Lang lang
	// 数据
	data     interface{}
	haveData bool
	// 错误详细信息
	details     []string
	haveDetails bool
}

var codes = map[int]string{}

// NewError 注册一个失败状态码
// statusCode 为响应使用的 HTTP 状态码
func NewError(code int, statusCode int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.GetMessage()
	return &Code{code: code, statusCode: statusCode, status: false, Lang: l}
}

var sussCodes = map[int]string{}

// NewSuss 注册一个成功状态码
func NewSuss(code int, statusCode int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	sussCodes[code] = l.GetMessage()
	return &Code{code: code, statusCode: statusCode, status: true, Lang: l}
}

func (e *Code) Reset() *Code {
	e.data = nil
	e.haveData = false
	e.details = []string{}
	e.haveDetails = false
	return e
}

// Clone 创建一个新的 Code 副本
// With* 链式调用前先 Clone，避免并发请求修改共享的注册对象
func (e *Code) Clone() *Code {
	return &Code{
		code:       e.code,
		statusCode: e.statusCode,
		status:     e.status,
		Lang:       e.Lang,
	}
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.haveData = true
	c.data = data
	return c
}

func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	if e.haveData {
		c.haveData = true
		c.data = e.data
	}
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return c
}

// StatusCode 返回响应使用的 HTTP 状态码
func (e *Code) StatusCode() int {
	if e.statusCode == 0 {
		return http.StatusOK
	}
	return e.statusCode
}
