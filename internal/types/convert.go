package types

import (
	"cardscan/internal/classify"
	"cardscan/internal/model"

	"github.com/jinzhu/copier"
)

// 列表字段在模型中以 ", " 分隔存储
var listConverters = []copier.TypeConverter{
	{
		SrcType: copier.String,
		DstType: []string{},
		Fn: func(src any) (any, error) {
			return classify.SplitList(src.(string)), nil
		},
	},
	{
		SrcType: []string{},
		DstType: copier.String,
		Fn: func(src any) (any, error) {
			return classify.JoinList(src.([]string)), nil
		},
	},
}

func copyContact(to, from any) error {
	return copier.CopyWithOption(to, from, copier.Option{Converters: listConverters})
}

// ToContactInfo 将 model.Contact 转换为 ContactInfo
func ToContactInfo(c *model.Contact) *ContactInfo {
	if c == nil {
		return nil
	}
	info := &ContactInfo{}
	if err := copyContact(info, c); err != nil {
		return &ContactInfo{ID: c.ID, Name: c.Name, Company: c.Company}
	}
	return info
}

// ToContactInfoList 批量转换
func ToContactInfoList(contacts []*model.Contact) []*ContactInfo {
	list := make([]*ContactInfo, len(contacts))
	for i, c := range contacts {
		list[i] = ToContactInfo(c)
	}
	return list
}

// ToContact 将保存请求转换为模型
func ToContact(req *CreateContactRequest) (*model.Contact, error) {
	c := &model.Contact{}
	if err := copyContact(c, req); err != nil {
		return nil, err
	}
	return c, nil
}

// FromFields 识别结果转为保存请求
func FromFields(f classify.Fields) *CreateContactRequest {
	return &CreateContactRequest{
		Name:        f.Name,
		Designation: f.Designation,
		Company:     f.Company,
		Phone:       f.Phone,
		Email:       f.Email,
		Website:     f.Website,
		Address:     f.Address,
	}
}

// ToCreateRequest 更新请求中的字段部分
func (r *UpdateContactRequest) ToCreateRequest() *CreateContactRequest {
	return &CreateContactRequest{
		Name:        r.Name,
		Designation: r.Designation,
		Company:     r.Company,
		Phone:       r.Phone,
		Email:       r.Email,
		Website:     r.Website,
		Address:     r.Address,
	}
}
