package code

import (
	"errors"
)

// lang type, used to store English and Chinese text
// lang 类型，用来存储英文和中文文本
type lang struct {
	en    string // English // 英文
	zh_cn string // Chinese // 中文
}

// Default language is English // 默认语言为英文
var lng = "en"

const FALLBACK_LNG = "en"

// GetMessage returns the message for the configured language
// GetMessage 根据当前语言返回相应的消息
func (l lang) GetMessage() string {
	switch lng {
	case "zh_cn":
		if l.zh_cn != "" {
			return l.zh_cn
		}
	}
	if l.en != "" {
		return l.en
	}
	return "No message available for language: " + lng
}

// GetSupportedLanguages returns all languages supported by the lang type
// GetSupportedLanguages 返回 lang 类型支持的所有语言
func GetSupportedLanguages() []string {
	return []string{"en", "zh_cn"}
}

// SetGlobalDefaultLang sets the global default language
// 设置全局默认语言
func SetGlobalDefaultLang(language string) error {
	for _, l := range GetSupportedLanguages() {
		if language == l {
			lng = language
			return nil
		}
	}
	lng = FALLBACK_LNG
	return errors.New("unsupported language type, set defaulting to " + FALLBACK_LNG)
}

// GetGlobalDefaultLang gets the global default language
// 获取全局默认语言
func GetGlobalDefaultLang() string {
	return lng
}
