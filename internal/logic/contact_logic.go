package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cardscan/common/database"
	"cardscan/common/logger"
	"cardscan/common/utils"
	"cardscan/internal/cache"
	"cardscan/internal/classify"
	"cardscan/internal/model"
	"cardscan/internal/svc"
	"cardscan/internal/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 可搜索的文本列
var searchColumns = []string{"name", "designation", "company", "phone", "email", "website", "address"}

// ContactLogic 联系人逻辑
type ContactLogic struct {
	ctx context.Context
}

// NewContactLogic 创建联系人逻辑
func NewContactLogic(ctx context.Context) *ContactLogic {
	return &ContactLogic{ctx: ctx}
}

func (l *ContactLogic) db() *gorm.DB {
	return svc.Ctx.DB.WithContext(l.ctx)
}

// dbError 数据库错误统一包装
func dbError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.ErrContactNotFound
	}
	return types.NewAppErrorWithCause(types.ErrCodeDBUnavailable, "Database operation failed", err)
}

// validateContact 名称或公司必填，联系方式需符合格式
func validateContact(req *types.CreateContactRequest) error {
	if utils.IsEmpty(req.Name) && utils.IsEmpty(req.Company) {
		return types.ErrContactIncomplete
	}
	var invalid []string
	for _, p := range req.Phone {
		if utils.IsNotEmpty(p) && !classify.ValidatePhone(p) {
			invalid = append(invalid, "phone "+p)
		}
	}
	for _, e := range req.Email {
		if utils.IsNotEmpty(e) && !classify.ValidateEmail(e) {
			invalid = append(invalid, "email "+e)
		}
	}
	for _, w := range req.Website {
		if utils.IsNotEmpty(w) && !classify.ValidateWebsite(w) {
			invalid = append(invalid, "website "+w)
		}
	}
	if len(invalid) > 0 {
		return types.NewAppErrorWithDetails(types.ErrCodeInvalidParameter, "Invalid contact details", strings.Join(invalid, "; "))
	}
	return nil
}

// checkLengths 字段长度不能超过列定义
func checkLengths(c *model.Contact) error {
	if over := c.Oversized(); len(over) > 0 {
		return types.NewAppErrorWithDetails(types.ErrCodeInvalidParameter, "Contact field too long", strings.Join(over, "; "))
	}
	return nil
}

func trimContact(c *model.Contact) {
	c.Name = utils.Trim(c.Name)
	c.Designation = utils.Trim(c.Designation)
	c.Company = utils.Trim(c.Company)
	c.Address = utils.Trim(c.Address)
}

// Create 保存联系人
func (l *ContactLogic) Create(req *types.CreateContactRequest) (*types.ContactInfo, error) {
	if err := validateContact(req); err != nil {
		return nil, err
	}
	contact, err := types.ToContact(req)
	if err != nil {
		return nil, types.NewAppErrorWithCause(types.ErrCodeInvalidParameter, "Invalid contact", err)
	}
	trimContact(contact)
	if err := checkLengths(contact); err != nil {
		return nil, err
	}

	if err := l.db().Create(contact).Error; err != nil {
		logger.Error("保存联系人失败", zap.Error(err))
		return nil, dbError(err)
	}
	l.invalidate()

	logger.Info("联系人已保存", zap.Uint("id", contact.ID), zap.String("name", contact.Name))
	return types.ToContactInfo(contact), nil
}

// contactPage 列表缓存内容
type contactPage struct {
	List  []*types.ContactInfo `json:"list"`
	Total int64                `json:"total"`
}

// List 分页获取联系人，按创建时间倒序，keyword 非空时按搜索过滤
func (l *ContactLogic) List(req *types.ListContactsRequest) ([]*types.ContactInfo, int64, error) {
	normalizePage(req)

	key := cache.ContactListKey(req.Page, req.PageSize, req.Keyword)
	if data, ok, err := svc.Ctx.Cache.Get(l.ctx, key); err != nil {
		logger.Warn("读取联系人缓存失败", zap.String("key", key), zap.Error(err))
	} else if ok {
		page, err := utils.FromJSONBytes[contactPage](data)
		if err == nil {
			return page.List, page.Total, nil
		}
		logger.Warn("联系人缓存内容无效", zap.String("key", key), zap.Error(err))
	}

	query := l.search(l.db().Model(&model.Contact{}), req.Keyword)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, dbError(err)
	}

	var contacts []*model.Contact
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(req.PageSize).Find(&contacts).Error; err != nil {
		return nil, 0, dbError(err)
	}

	list := types.ToContactInfoList(contacts)
	if data, err := utils.Marshal(contactPage{List: list, Total: total}); err == nil {
		if err := svc.Ctx.Cache.Set(l.ctx, key, data, svc.Ctx.Config.CacheTTL()); err != nil {
			logger.Warn("写入联系人缓存失败", zap.String("key", key), zap.Error(err))
		}
	}
	return list, total, nil
}

func normalizePage(req *types.ListContactsRequest) {
	defaultSize, maxSize := 10, 100
	if cfg := svc.Ctx.Config; cfg != nil {
		defaultSize, maxSize = cfg.Pagination.DefaultPageSize, cfg.Pagination.MaxPageSize
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = defaultSize
	}
	if req.PageSize > maxSize {
		req.PageSize = maxSize
	}
	req.Keyword = strings.TrimSpace(req.Keyword)
}

// search 所有文本列做不区分大小写的模糊匹配
func (l *ContactLogic) search(query *gorm.DB, keyword string) *gorm.DB {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return query
	}
	pattern := "%" + strings.ToLower(keyword) + "%"
	conds := make([]string, len(searchColumns))
	args := make([]any, len(searchColumns))
	for i, col := range searchColumns {
		conds[i] = fmt.Sprintf("LOWER(%s) LIKE ?", col)
		args[i] = pattern
	}
	return query.Where(strings.Join(conds, " OR "), args...)
}

// All 获取全部联系人，按创建时间倒序
func (l *ContactLogic) All() ([]*model.Contact, error) {
	var contacts []*model.Contact
	if err := l.db().Order("created_at DESC, id DESC").Find(&contacts).Error; err != nil {
		return nil, dbError(err)
	}
	return contacts, nil
}

// Search 搜索联系人
func (l *ContactLogic) Search(keyword string) ([]*types.ContactInfo, error) {
	var contacts []*model.Contact
	query := l.search(l.db().Model(&model.Contact{}), keyword)
	if err := query.Order("created_at DESC, id DESC").Find(&contacts).Error; err != nil {
		return nil, dbError(err)
	}
	return types.ToContactInfoList(contacts), nil
}

// GetByID 获取联系人
func (l *ContactLogic) GetByID(id uint) (*types.ContactInfo, error) {
	contact, err := l.get(l.db(), id)
	if err != nil {
		return nil, err
	}
	return types.ToContactInfo(contact), nil
}

func (l *ContactLogic) get(db *gorm.DB, id uint) (*model.Contact, error) {
	var contact model.Contact
	if err := db.First(&contact, id).Error; err != nil {
		return nil, dbError(err)
	}
	return &contact, nil
}

// Update 更新联系人，七个字段整体替换
func (l *ContactLogic) Update(req *types.UpdateContactRequest) (*types.ContactInfo, error) {
	fields := req.ToCreateRequest()
	if err := validateContact(fields); err != nil {
		return nil, err
	}
	contact, err := l.get(l.db(), req.ID)
	if err != nil {
		return nil, err
	}

	next, err := types.ToContact(fields)
	if err != nil {
		return nil, types.NewAppErrorWithCause(types.ErrCodeInvalidParameter, "Invalid contact", err)
	}
	trimContact(next)
	if err := checkLengths(next); err != nil {
		return nil, err
	}
	next.ID = contact.ID
	next.CreatedAt = contact.CreatedAt

	if err := l.save(l.db(), next); err != nil {
		return nil, err
	}
	l.invalidate()

	logger.Info("联系人已更新", zap.Uint("id", next.ID))
	return types.ToContactInfo(next), nil
}

func (l *ContactLogic) save(db *gorm.DB, c *model.Contact) error {
	err := db.Model(&model.Contact{ID: c.ID}).
		Select(searchColumns).
		Updates(c).Error
	return dbError(err)
}

// Delete 删除联系人
func (l *ContactLogic) Delete(id uint) error {
	result := l.db().Delete(&model.Contact{}, id)
	if result.Error != nil {
		return dbError(result.Error)
	}
	if result.RowsAffected == 0 {
		return types.ErrContactNotFound
	}
	l.invalidate()

	logger.Info("联系人已删除", zap.Uint("id", id))
	return nil
}

// Ping 测试数据库连接
func (l *ContactLogic) Ping() error {
	if err := database.Ping(l.ctx, svc.Ctx.DB); err != nil {
		return types.NewAppErrorWithCause(types.ErrCodeDBUnavailable, types.ErrDBUnavailable.Message, err)
	}
	return nil
}

// invalidate 清除列表缓存
func (l *ContactLogic) invalidate() {
	if err := svc.Ctx.Cache.DeletePrefix(l.ctx, cache.ContactListPrefix); err != nil {
		logger.Warn("清除联系人缓存失败", zap.Error(err))
	}
}
