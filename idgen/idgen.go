package idgen

import (
	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

// NewWorker creates a sonyflake worker. When no private address is available to derive the
// machine id from (containers without a private network, CI runners) it falls back to a fixed one.
func NewWorker() *sonyflake.Sonyflake {
	w := sonyflake.NewSonyflake(sonyflake.Settings{})
	if w != nil {
		return w
	}
	logrus.Warn("sonyflake: machine id not resolvable from network, falling back to a fixed machine id")
	return sonyflake.NewSonyflake(sonyflake.Settings{MachineID: func() (uint16, error) { return 1, nil }})
}

func NextID(idWorker *sonyflake.Sonyflake) types.ID {
	id, err := idWorker.NextID()
	if err != nil {
		panic(err)
	}
	return types.ID(id)
}
