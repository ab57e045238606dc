package storage

import "github.com/huangpeipei/metanode-dex/internal/model"

// Storage defines a sink for pool snapshots.
type Storage interface {
	PutPoolSnapshots(snapshots []model.PoolSnapshot) error
}
