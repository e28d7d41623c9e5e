package model

import (
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// Series 是按时间顺序排列的数值序列，下标0是最早的数据，最后一个元素是最新的数据
type Series[T constraints.Ordered] []T

// Values 返回序列中的所有值
func (s Series[T]) Values() []T {
	return s
}

// Len 返回序列中值的数量
func (s Series[T]) Len() int {
	return len(s)
}

// Last 返回倒数第 position+1 个值，Last(0) 就是最新的值
func (s Series[T]) Last(position int) T {
	return s[len(s)-1-position]
}

// LastValues 返回序列最后 size 个值，长度不够时返回整个序列
func (s Series[T]) LastValues(size int) []T {
	if l := len(s); l > size {
		return s[l-size:]
	}
	return s
}

// NumDecPlaces 返回一个float64值的小数位数，用来推断报价精度
func NumDecPlaces(v float64) int64 {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	i := strings.IndexByte(s, '.')
	if i > -1 {
		return int64(len(s) - i - 1)
	}
	return 0
}
