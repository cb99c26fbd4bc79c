package types

import (
	commonTypes "cardscan/common/types"
)

// ContactInfo 联系人信息
type ContactInfo struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Designation string               `json:"designation"`
	Company     string               `json:"company"`
	Phone       []string             `json:"phone"`
	Email       []string             `json:"email"`
	Website     []string             `json:"website"`
	Address     string               `json:"address"`
	CreatedAt   commonTypes.DateTime `json:"createdAt"`
}

// CreateContactRequest 保存联系人请求，可来自识别结果或手工录入
type CreateContactRequest struct {
	Name        string   `json:"name"`
	Designation string   `json:"designation"`
	Company     string   `json:"company"`
	Phone       []string `json:"phone"`
	Email       []string `json:"email"`
	Website     []string `json:"website"`
	Address     string   `json:"address"`
}

// UpdateContactRequest 更新联系人请求，整体替换七个字段
type UpdateContactRequest struct {
	ID          uint     `json:"id" validate:"required"`
	Name        string   `json:"name"`
	Designation string   `json:"designation"`
	Company     string   `json:"company"`
	Phone       []string `json:"phone"`
	Email       []string `json:"email"`
	Website     []string `json:"website"`
	Address     string   `json:"address"`
}

// ListContactsRequest 联系人列表请求
type ListContactsRequest struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Keyword  string `json:"keyword"`
}

// DuplicateCheckRequest 重复检查请求
type DuplicateCheckRequest struct {
	Name  string   `json:"name"`
	Phone []string `json:"phone"`
	Email []string `json:"email"`
}

// DuplicateMatch 一条疑似重复的联系人
type DuplicateMatch struct {
	Contact     *ContactInfo `json:"contact"`
	MatchFields []string     `json:"matchFields"`
}

// DuplicateResult 重复检查结果
type DuplicateResult struct {
	HasDuplicates   bool              `json:"hasDuplicates"`
	Duplicates      []*DuplicateMatch `json:"duplicates"`
	DuplicateFields []string          `json:"duplicateFields"`
}

// MergeContactsRequest 合并联系人请求
type MergeContactsRequest struct {
	KeepID   uint `json:"keepId" validate:"required"`
	RemoveID uint `json:"removeId" validate:"required"`
}

// ImportResult 导入结果
type ImportResult struct {
	SuccessCount int      `json:"successCount"`
	ErrorCount   int      `json:"errorCount"`
	SkippedCount int      `json:"skippedCount"`
	TotalCount   int      `json:"totalCount"`
	Errors       []string `json:"errors"`
	Message      string   `json:"message"`
}

// ComponentStatus 系统自检单项结果
type ComponentStatus struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// SystemTestResult 系统自检结果
type SystemTestResult struct {
	OK         bool               `json:"ok"`
	Components []*ComponentStatus `json:"components"`
}
