package model

import (
	"fmt"
	"unicode/utf8"

	"cardscan/common/types"

	"gorm.io/gorm"
)

const TableNameContact = "contacts"

// 列长度上限（字符），与 gorm size 标签一致
const (
	NameSize        = 100
	DesignationSize = 100
	CompanySize     = 100
	PhoneSize       = 50
	EmailSize       = 100
	WebsiteSize     = 100
	AddressSize     = 255
)

// Contact 名片联系人
// phone/email/website 以 ", " 分隔存储多个值
type Contact struct {
	ID          uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"column:name;size:100;index:idx_contacts_name" json:"name"`
	Designation string         `gorm:"column:designation;size:100" json:"designation"`
	Company     string         `gorm:"column:company;size:100;index:idx_contacts_company" json:"company"`
	Phone       string         `gorm:"column:phone;size:50" json:"phone"`
	Email       string         `gorm:"column:email;size:100" json:"email"`
	Website     string         `gorm:"column:website;size:100" json:"website"`
	Address     string         `gorm:"column:address;size:255" json:"address"`
	CreatedAt   types.DateTime `gorm:"column:created_at;index:idx_contacts_created_at" json:"createdAt"`
}

// TableName 表名
func (*Contact) TableName() string {
	return TableNameContact
}

// BeforeCreate GORM创建前钩子
func (c *Contact) BeforeCreate(*gorm.DB) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = types.Now()
	}
	return nil
}

// Oversized 返回超出列长度的字段说明，按字符计数
func (c *Contact) Oversized() []string {
	fields := []struct {
		name  string
		value string
		size  int
	}{
		{"name", c.Name, NameSize},
		{"designation", c.Designation, DesignationSize},
		{"company", c.Company, CompanySize},
		{"phone", c.Phone, PhoneSize},
		{"email", c.Email, EmailSize},
		{"website", c.Website, WebsiteSize},
		{"address", c.Address, AddressSize},
	}
	var out []string
	for _, f := range fields {
		if n := utf8.RuneCountInString(f.value); n > f.size {
			out = append(out, fmt.Sprintf("%s exceeds %d characters (%d)", f.name, f.size, n))
		}
	}
	return out
}

// AutoMigrate 确保联系人表及索引存在
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Contact{})
}
