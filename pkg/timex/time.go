// Package timex provides a database friendly time type
// Package timex 提供数据库友好的时间类型
package timex

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const layout = "2006-01-02 15:04:05"

// Time wraps time.Time with database and JSON codecs
// Time 包装 time.Time，实现数据库和 JSON 编解码
type Time time.Time

// Now returns the current time as a timex.Time
func Now() Time {
	return Time(time.Now())
}

func (t Time) Time() time.Time {
	return time.Time(t)
}

func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) String() string {
	return time.Time(t).Format(layout)
}

// MarshalJSON serializes as "YYYY-MM-DD hh:mm:ss"
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON accepts the same layout, empty string means zero time
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == `""` || s == "null" {
		*t = Time(time.Time{})
		return nil
	}
	parsed, err := time.ParseInLocation(`"`+layout+`"`, s, time.Local)
	if err != nil {
		return err
	}
	*t = Time(parsed)
	return nil
}

// Value implements driver.Valuer
func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

// Scan implements sql.Scanner
func (t *Time) Scan(v any) error {
	switch value := v.(type) {
	case nil:
		*t = Time(time.Time{})
	case time.Time:
		*t = Time(value)
	case string:
		parsed, err := time.ParseInLocation(layout, value, time.Local)
		if err != nil {
			return err
		}
		*t = Time(parsed)
	case []byte:
		parsed, err := time.ParseInLocation(layout, string(value), time.Local)
		if err != nil {
			return err
		}
		*t = Time(parsed)
	default:
		return fmt.Errorf("timex: cannot scan %T into Time", v)
	}
	return nil
}
