package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field is a structured logging field
type Field interface {
	Key() string
	Value() interface{}
	ZapField() zap.Field
}

// zapField wraps a zap.Field and implements the Field interface
type zapField struct {
	field zap.Field
}

func (f zapField) Key() string {
	return f.field.Key
}

func (f zapField) Value() interface{} {
	return f.field.Interface
}

func (f zapField) ZapField() zap.Field {
	return f.field
}

// Field constructors
var (
	String = func(key, val string) Field {
		return zapField{zap.String(key, val)}
	}

	Strings = func(key string, val []string) Field {
		return zapField{zap.Strings(key, val)}
	}

	Int = func(key string, val int) Field {
		return zapField{zap.Int(key, val)}
	}

	Int64 = func(key string, val int64) Field {
		return zapField{zap.Int64(key, val)}
	}

	Float64 = func(key string, val float64) Field {
		return zapField{zap.Float64(key, val)}
	}

	Bool = func(key string, val bool) Field {
		return zapField{zap.Bool(key, val)}
	}

	Duration = func(key string, val time.Duration) Field {
		return zapField{zap.Duration(key, val)}
	}

	Any = func(key string, val interface{}) Field {
		return zapField{zap.Any(key, val)}
	}

	Error = func(err error) Field {
		return zapField{zap.Error(err)}
	}
)
