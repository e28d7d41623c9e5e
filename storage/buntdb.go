package storage

import (
	"encoding/json"
	"strconv"
	"sync/atomic"

	"github.com/tidwall/buntdb"

	"github.com/itqwq/fxsim/model"
	"github.com/itqwq/fxsim/tools/log"
)

// Bunt 把持仓以 JSON 形式存放在 buntdb 中，键为持仓ID
type Bunt struct {
	lastID int64
	db     *buntdb.DB
}

func FromMemory() (Storage, error) {
	return newBunt(":memory:")
}

func FromFile(file string) (Storage, error) {
	return newBunt(file)
}

func newBunt(sourceFile string) (Storage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, err
	}

	// 同一根K线上开的仓按 ID 排序
	err = db.CreateIndex("opened_index", "*", buntdb.IndexJSON("opened_at"), buntdb.IndexJSON("id"))
	if err != nil {
		return nil, err
	}

	bunt := &Bunt{db: db}

	// 从已有文件恢复时，ID 从最大值继续递增
	err = db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys("*", func(key, _ string) bool {
			if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > bunt.lastID {
				bunt.lastID = id
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}

	return bunt, nil
}

func (b *Bunt) getID() int64 {
	return atomic.AddInt64(&b.lastID, 1)
}

func (b *Bunt) CreatePosition(position *model.Position) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		position.ID = b.getID()
		content, err := json.Marshal(position)
		if err != nil {
			return err
		}

		_, _, err = tx.Set(strconv.FormatInt(position.ID, 10), string(content), nil)
		return err
	})
}

func (b *Bunt) UpdatePosition(position *model.Position) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		id := strconv.FormatInt(position.ID, 10)
		if _, err := tx.Get(id); err != nil {
			return err
		}

		content, err := json.Marshal(position)
		if err != nil {
			return err
		}
		_, _, err = tx.Set(id, string(content), nil)
		return err
	})
}

func (b *Bunt) Positions(filters ...PositionFilter) ([]*model.Position, error) {
	positions := make([]*model.Position, 0)
	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("opened_index", func(key, value string) bool {
			var position model.Position
			err := json.Unmarshal([]byte(value), &position)
			if err != nil {
				log.WithField("key", key).Warnf("invalid position: %v", err)
				return true
			}
			for _, filter := range filters {
				if ok := filter(position); !ok {
					return true
				}
			}
			positions = append(positions, &position)
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return positions, nil
}
