package middleware

import (
	"strings"

	"github.com/notehive/collab-note-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// LangWithTranslator 解析请求语言并注入对应翻译器
// 优先取 lang 查询参数，其次取 lang 请求头，找不到翻译器时回退英文
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang string

		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			lang = s
		}

		lang = strings.ToLower(strings.ReplaceAll(lang, "-", "_"))

		trans, found := uni.GetTranslator(lang)

		if found {
			c.Set("trans", trans)
		} else {
			trans, _ := uni.GetTranslator("en")
			c.Set("trans", trans)
		}

		code.SetGlobalDefaultLang(lang)

		c.Next()
	}
}
