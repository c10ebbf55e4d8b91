package snowflake

import (
	"errors"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node   *snowflake.Node
	nodeMu sync.RWMutex

	errInvalidMachineID    = errors.New("invalid snowflake machine id")
	errInvalidDataCenterID = errors.New("invalid snowflake datacenter id")
)

// Init 根据机器号和数据中心号创建节点，二者都在 0~31 之间
func Init(machineID, dataCenterID int64) error {
	if machineID < 0 || machineID > 31 {
		return errInvalidMachineID
	}
	if dataCenterID < 0 || dataCenterID > 31 {
		return errInvalidDataCenterID
	}

	n, err := snowflake.NewNode((dataCenterID << 5) | machineID)
	if err != nil {
		return err
	}

	nodeMu.Lock()
	node = n
	nodeMu.Unlock()
	return nil
}

// NextID 生成下一个 ID；未调用 Init 时使用 0 号节点
func NextID() (int64, error) {
	nodeMu.RLock()
	n := node
	nodeMu.RUnlock()

	if n == nil {
		if err := Init(0, 0); err != nil {
			return 0, err
		}
		return NextID()
	}

	return n.Generate().Int64(), nil
}

// ParseID 解析对外暴露的字符串 ID
func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
