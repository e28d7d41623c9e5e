package storage

import (
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/itqwq/fxsim/model"
)

// SQL 使用 gorm 把持仓保存到关系型数据库
type SQL struct {
	db *gorm.DB
}

func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (Storage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	err = db.AutoMigrate(&model.Position{})
	if err != nil {
		return nil, err
	}

	return &SQL{
		db: db,
	}, nil
}

func (s *SQL) CreatePosition(position *model.Position) error {
	return s.db.Create(position).Error
}

func (s *SQL) UpdatePosition(position *model.Position) error {
	var current model.Position
	if err := s.db.First(&current, position.ID).Error; err != nil {
		return err
	}
	return s.db.Save(position).Error
}

func (s *SQL) Positions(filters ...PositionFilter) ([]*model.Position, error) {
	positions := make([]*model.Position, 0)
	result := s.db.Order("opened_at, id").Find(&positions)
	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return nil, result.Error
	}

	return lo.Filter(positions, func(position *model.Position, _ int) bool {
		for _, filter := range filters {
			if !filter(*position) {
				return false
			}
		}
		return true
	}), nil
}
