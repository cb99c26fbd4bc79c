package logic

import (
	"sort"
	"strings"

	"cardscan/common/logger"
	"cardscan/common/utils"
	"cardscan/internal/classify"
	"cardscan/internal/model"
	"cardscan/internal/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 重复匹配字段
const (
	MatchName  = "name"
	MatchPhone = "phone"
	MatchEmail = "email"
)

// CheckDuplicates 与已存联系人比对，姓名相同或任一电话、邮箱相同即视为疑似重复
func (l *ContactLogic) CheckDuplicates(req *types.DuplicateCheckRequest) (*types.DuplicateResult, error) {
	contacts, err := l.All()
	if err != nil {
		return nil, err
	}

	result := &types.DuplicateResult{
		Duplicates:      []*types.DuplicateMatch{},
		DuplicateFields: []string{},
	}
	for _, c := range contacts {
		fields := matchFields(req, c)
		if len(fields) == 0 {
			continue
		}
		result.Duplicates = append(result.Duplicates, &types.DuplicateMatch{
			Contact:     types.ToContactInfo(c),
			MatchFields: fields,
		})
		result.DuplicateFields = append(result.DuplicateFields, fields...)
	}

	result.DuplicateFields = utils.SliceUnique(result.DuplicateFields)
	sort.Strings(result.DuplicateFields)
	result.HasDuplicates = len(result.Duplicates) > 0
	return result, nil
}

func matchFields(req *types.DuplicateCheckRequest, c *model.Contact) []string {
	var fields []string
	if name := utils.Trim(req.Name); name != "" && strings.EqualFold(name, utils.Trim(c.Name)) {
		fields = append(fields, MatchName)
	}
	if anyEqual(req.Phone, classify.SplitList(c.Phone), false) {
		fields = append(fields, MatchPhone)
	}
	if anyEqual(req.Email, classify.SplitList(c.Email), true) {
		fields = append(fields, MatchEmail)
	}
	return fields
}

func anyEqual(candidates, stored []string, foldCase bool) bool {
	for _, a := range candidates {
		a = utils.Trim(a)
		if a == "" {
			continue
		}
		for _, b := range stored {
			if a == b || (foldCase && strings.EqualFold(a, b)) {
				return true
			}
		}
	}
	return false
}

// MergeContacts 合并两个联系人，文本字段取较长者，列表字段按顺序取并集
func MergeContacts(keep, remove *model.Contact) *model.Contact {
	return &model.Contact{
		ID:          keep.ID,
		Name:        utils.Longer(keep.Name, remove.Name),
		Designation: utils.Longer(keep.Designation, remove.Designation),
		Company:     utils.Longer(keep.Company, remove.Company),
		Phone:       mergeList(keep.Phone, remove.Phone),
		Email:       mergeList(keep.Email, remove.Email),
		Website:     mergeList(keep.Website, remove.Website),
		Address:     utils.Longer(keep.Address, remove.Address),
		CreatedAt:   keep.CreatedAt,
	}
}

func mergeList(a, b string) string {
	return classify.JoinList(utils.SliceUnion(classify.SplitList(a), classify.SplitList(b)))
}

// Merge 将 removeID 合并到 keepID 并删除 removeID
func (l *ContactLogic) Merge(req *types.MergeContactsRequest) (*types.ContactInfo, error) {
	if req.KeepID == 0 || req.RemoveID == 0 {
		return nil, types.NewAppError(types.ErrCodeInvalidParameter, "Both contact ids are required")
	}
	if req.KeepID == req.RemoveID {
		return nil, types.NewAppError(types.ErrCodeInvalidParameter, "Cannot merge a contact with itself")
	}

	var merged *model.Contact
	err := l.db().Transaction(func(tx *gorm.DB) error {
		keep, err := l.get(tx, req.KeepID)
		if err != nil {
			return err
		}
		remove, err := l.get(tx, req.RemoveID)
		if err != nil {
			return err
		}

		merged = MergeContacts(keep, remove)
		if err := checkLengths(merged); err != nil {
			return err
		}
		if err := l.save(tx, merged); err != nil {
			return err
		}
		return dbError(tx.Delete(&model.Contact{}, remove.ID).Error)
	})
	if err != nil {
		logger.Warn("合并联系人失败", zap.Uint("keepId", req.KeepID), zap.Uint("removeId", req.RemoveID), zap.Error(err))
		return nil, dbError(err)
	}
	l.invalidate()

	logger.Info("联系人已合并", zap.Uint("keepId", req.KeepID), zap.Uint("removeId", req.RemoveID))
	return types.ToContactInfo(merged), nil
}
