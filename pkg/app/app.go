package app

import (
	"strings"
	"sync/atomic"

	"github.com/notehive/collab-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// productionMode 生产模式下响应不携带错误详情
var productionMode atomic.Bool

// SetProductionMode 设置生产模式开关
// 生产模式下 details 字段不输出，避免数据库等内部错误泄露给客户端
func SetProductionMode(enabled bool) {
	productionMode.Store(enabled)
}

// IsProductionMode 返回是否处于生产模式
func IsProductionMode() bool {
	return productionMode.Load()
}

// VersionInfo version information // 版本信息
type VersionInfo struct {
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

type Response struct {
	Ctx *gin.Context
}

// ListRes 列表响应的 Data 部分
type ListRes struct {
	List       interface{} `json:"list"`       // Data list // 数据清单
	Pagination Pagination  `json:"pagination"` // Pagination info // 翻页信息
}

// Res is the unified response structure: Code/Status/Msg/Data
// Res 是统一的响应结构：Code/Status/Msg/Data
// Optional fields use omitempty (will not be serialized if nil)
// 可选字段使用 omitempty（nil 则不会被序列化）
type Res struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Message interface{} `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{
		Ctx: ctx,
	}
}

// GetRequestIP gets the request IP
// GetRequestIP 获取ip
func GetRequestIP(c *gin.Context) string {
	reqIP := c.ClientIP()
	if reqIP == "::1" {
		reqIP = "127.0.0.1"
	}
	return reqIP
}

// GetUID 获取认证中间件注入的用户 ID，未认证时返回 0
func GetUID(c *gin.Context) int64 {
	if v, ok := c.Get("user_token"); ok {
		if user, ok := v.(*UserEntity); ok {
			return user.UID
		}
	}
	return 0
}

// GetUser 获取认证中间件注入的用户信息
func GetUser(c *gin.Context) *UserEntity {
	if v, ok := c.Get("user_token"); ok {
		if user, ok := v.(*UserEntity); ok {
			return user
		}
	}
	return nil
}

// ToResponse output to browser: unified use of Res, HTTP status comes from the code object
// ToResponse 输出到浏览器：统一使用 Res，HTTP 状态码由 code 对象决定
func (r *Response) ToResponse(codeObj *code.Code) {
	r.Ctx.Set("status_code", codeObj.StatusCode())

	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data:    codeObj.Data(),
	}

	if codeObj.HaveDetails() && !IsProductionMode() {
		content.Details = strings.Join(codeObj.Details(), ",")
	}

	r.send(codeObj.StatusCode(), content)
}

// ToResponseList outputs list response using ListRes as Data
// ToResponseList 输出列表响应，使用 ListRes 作为 Data
func (r *Response) ToResponseList(codeObj *code.Code, list interface{}, pagination Pagination) {
	r.Ctx.Set("status_code", codeObj.StatusCode())

	r.send(codeObj.StatusCode(), Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data: ListRes{
			List:       list,
			Pagination: pagination,
		},
	})
}

func (r *Response) send(statusCode int, content interface{}) {
	r.Ctx.JSON(statusCode, content)
}
