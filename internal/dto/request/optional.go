package request

import "encoding/json"

// Optional 区分字段缺失与显式 null
// Set=false 表示请求体中没有该字段；Set=true 且 Value=nil 表示显式清空
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON 字段出现在请求体中时才会被调用，包括 null
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Some 构造一个已设置的值，便于测试和内部调用
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}
