package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// DateTimeFormat 日期时间格式
const DateTimeFormat = "2006-01-02 15:04:05"

// 依次尝试的解析格式
var dateTimeLayouts = []string{
	DateTimeFormat,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

// DateTime 自定义时间类型，JSON序列化为 "yyyy-MM-dd HH:mm:ss" 格式
type DateTime time.Time

// Now 返回当前时间的DateTime
func Now() DateTime {
	return DateTime(time.Now())
}

// NewDateTime 从time.Time创建DateTime
func NewDateTime(t time.Time) DateTime {
	return DateTime(t)
}

// ParseDateTime 按支持的格式解析时间字符串
func ParseDateTime(s string) (DateTime, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return DateTime(t), nil
		}
		lastErr = err
	}
	return DateTime{}, fmt.Errorf("无法解析时间格式: %s, 错误: %v", s, lastErr)
}

// Time 转换为time.Time
func (t DateTime) Time() time.Time {
	return time.Time(t)
}

// IsZero 判断是否为零值
func (t DateTime) IsZero() bool {
	return time.Time(t).IsZero()
}

// String 零值输出空字符串
func (t DateTime) String() string {
	if t.IsZero() {
		return ""
	}
	return time.Time(t).Format(DateTimeFormat)
}

// MarshalJSON 实现json.Marshaler接口
func (t DateTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON 实现json.Unmarshaler接口
func (t *DateTime) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	if str == "" || str == "null" {
		*t = DateTime{}
		return nil
	}
	parsed, err := ParseDateTime(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value 实现driver.Valuer接口
func (t DateTime) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

// Scan 实现sql.Scanner接口
func (t *DateTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*t = DateTime{}
		return nil
	case time.Time:
		*t = DateTime(v)
		return nil
	case string:
		parsed, err := ParseDateTime(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		return t.Scan(string(v))
	default:
		return fmt.Errorf("无法将 %T 转换为 DateTime", value)
	}
}

// GormDataType 通用数据类型
func (DateTime) GormDataType() string {
	return "time"
}

// GormDBDataType 按方言返回列类型
func (DateTime) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "timestamptz"
	default:
		return "datetime"
	}
}
