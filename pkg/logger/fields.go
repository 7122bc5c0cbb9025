package logger

import (
	"time"

	"go.uber.org/zap"
)

type Field = zap.Field

func String(key, val string) Field                 { return zap.String(key, val) }
func Strings(key string, val []string) Field       { return zap.Strings(key, val) }
func Int(key string, val int) Field                { return zap.Int(key, val) }
func Int64(key string, val int64) Field            { return zap.Int64(key, val) }
func Bool(key string, val bool) Field              { return zap.Bool(key, val) }
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }
func Time(key string, val time.Time) Field         { return zap.Time(key, val) }
func Any(key string, val interface{}) Field        { return zap.Any(key, val) }
func Stringer(key string, val interface{ String() string }) Field {
	return zap.Stringer(key, val)
}

// GetError 将 error 转为日志字段
func GetError(e error) Field {
	return zap.Error(e)
}
