package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrSlotTaken 监考场次已被其他人抢先认领（行级条件更新未命中）
var ErrSlotTaken = errors.New("该监考场次已被他人认领")

// ErrAppealDecided 申诉已落终态，不可再次裁决
var ErrAppealDecided = errors.New("该申诉已处理完毕，不可重复裁决")
