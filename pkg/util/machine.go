package util

import (
	"os"
	"sync"

	"github.com/denisbrodbeck/machineid"
)

var (
	machineID   string
	machineIDMu sync.Mutex
)

// GetMachineID 获取当前机器的唯一标识符
// 优先使用 machineid 库，失败则回退到主机名
// 返回值: 机器ID字符串，全部失败时返回空字符串
func GetMachineID() string {
	machineIDMu.Lock()
	defer machineIDMu.Unlock()

	if machineID != "" {
		return machineID
	}

	if id, err := machineid.ID(); err == nil && id != "" {
		machineID = id
		return machineID
	}

	if host, err := os.Hostname(); err == nil {
		machineID = host
	}
	return machineID
}
