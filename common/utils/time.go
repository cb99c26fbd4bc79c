package utils

import "time"

// FileStampFormat 文件名时间戳
const FileStampFormat = "20060102_150405"

// FileStamp 生成文件名用时间戳
func FileStamp(t time.Time) string {
	return t.Format(FileStampFormat)
}
