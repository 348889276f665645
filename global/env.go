package global

import (
	"github.com/notehive/collab-note-service/pkg/fileurl"
)

var (
	// 程序执行目录
	ROOT string
	// Name 服务名称
	Name string = "Collab Note Service"
	// WebClientName Web 客户端名称
	WebClientName string = "Web"
)

func init() {
	ROOT = fileurl.GetExePath() + "/"
}
