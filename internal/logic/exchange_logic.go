package logic

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"cardscan/common/logger"
	"cardscan/common/utils"
	"cardscan/internal/classify"
	"cardscan/internal/model"
	"cardscan/internal/types"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// 导入导出格式
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatXLSX  = "xlsx"
)

// ExportSheet Excel 工作表名
const ExportSheet = "Contacts"

// 导入必需列，同时是模板表头
var importColumns = []string{"name", "designation", "company", "phone", "email", "website", "address"}

// 导出列
var exportColumns = []string{"id", "name", "designation", "company", "phone", "email", "website", "address", "created_at"}

var templateRows = [][]string{
	{"John Doe", "Software Engineer", "Tech Corp", "(555) 123-4567", "john@techcorp.com", "www.techcorp.com", "123 Main St, City, State 12345"},
	{"Jane Smith", "Marketing Manager", "Marketing Inc", "(555) 987-6543", "jane@marketing.com", "www.marketing.com", "456 Oak Ave, Town, State 67890"},
}

// ExchangeLogic 联系人导入导出逻辑
type ExchangeLogic struct {
	ctx      context.Context
	contacts *ContactLogic
}

// NewExchangeLogic 创建导入导出逻辑
func NewExchangeLogic(ctx context.Context) *ExchangeLogic {
	return &ExchangeLogic{ctx: ctx, contacts: NewContactLogic(ctx)}
}

// NormalizeFormat 规范化格式名，excel 与 xlsx 等价
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatExcel, FormatXLSX:
		return FormatExcel, nil
	default:
		return "", types.NewAppErrorWithDetails(types.ErrCodeInvalidParameter, "Unsupported format", format)
	}
}

// ExportFileName 导出文件名 contacts_export_YYYYMMDD_HHMMSS.{csv,xlsx}
func ExportFileName(format string, now time.Time) string {
	ext := FormatCSV
	if format == FormatExcel {
		ext = FormatXLSX
	}
	return fmt.Sprintf("contacts_export_%s.%s", utils.FileStamp(now), ext)
}

func exportRow(c *model.Contact) []string {
	return []string{
		strconv.FormatUint(uint64(c.ID), 10),
		c.Name,
		c.Designation,
		c.Company,
		c.Phone,
		c.Email,
		c.Website,
		c.Address,
		c.CreatedAt.String(),
	}
}

func (l *ExchangeLogic) exportable() ([]*model.Contact, error) {
	contacts, err := l.contacts.All()
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, types.ErrExportEmpty
	}
	return contacts, nil
}

// Export 按格式导出
func (l *ExchangeLogic) Export(w io.Writer, format string) error {
	format, err := NormalizeFormat(format)
	if err != nil {
		return err
	}
	if format == FormatExcel {
		return l.ExportExcel(w)
	}
	return l.ExportCSV(w)
}

// ExportCSV 导出 CSV
func (l *ExchangeLogic) ExportCSV(w io.Writer) error {
	contacts, err := l.exportable()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportColumns); err != nil {
		return err
	}
	for _, c := range contacts {
		if err := cw.Write(exportRow(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	logger.Info("联系人已导出", zap.String("format", FormatCSV), zap.Int("count", len(contacts)))
	return nil
}

// ExportExcel 导出 Excel，表头加粗并冻结首行
func (l *ExchangeLogic) ExportExcel(w io.Writer) error {
	contacts, err := l.exportable()
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheet); err != nil {
		return err
	}
	if err := setRow(f, 1, exportColumns); err != nil {
		return err
	}
	for i, c := range contacts {
		if err := setRow(f, i+2, exportRow(c)); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(exportColumns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(ExportSheet, "A1", lastCol+"1", style); err != nil {
		return err
	}
	if err := f.SetPanes(ExportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return err
	}
	logger.Info("联系人已导出", zap.String("format", FormatExcel), zap.Int("count", len(contacts)))
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(ExportSheet, cell, &cells)
}

// Template 导入模板 CSV
func Template() []byte {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write(importColumns)
	_ = cw.WriteAll(templateRows)
	return buf.Bytes()
}

// Import 导入 CSV 或 XLSX，skipDuplicates 为 true 时跳过已存在的联系人
func (l *ExchangeLogic) Import(r io.Reader, format string, skipDuplicates bool) (*types.ImportResult, error) {
	format, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}

	var records [][]string
	if format == FormatExcel {
		records, err = readXLSX(r)
	} else {
		records, err = readCSV(r)
	}
	if err != nil {
		return nil, err
	}

	kind := "CSV"
	if format == FormatExcel {
		kind = "Excel"
	}

	result := &types.ImportResult{Errors: []string{}}
	if len(records) <= 1 {
		result.Message = kind + " file is empty"
		return result, nil
	}

	header := records[0]
	rows := records[1:]
	result.TotalCount = len(rows)

	index, missing := columnIndex(header)
	if len(missing) > 0 {
		msg := "Missing required columns: " + strings.Join(missing, ", ")
		result.Errors = append(result.Errors, msg)
		result.Message = kind + " file missing required columns"
		return result, types.NewAppErrorWithDetails(types.ErrCodeCSVMalformed, result.Message, msg)
	}

	var seen []*model.Contact
	if skipDuplicates {
		if seen, err = l.contacts.All(); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		c := rowContact(row, index)
		if c.Name == "" && c.Company == "" {
			result.SkippedCount++
			continue
		}
		if skipDuplicates && isImportDuplicate(c, seen) {
			result.SkippedCount++
			continue
		}
		if err := checkLengths(c); err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		if err := l.contacts.db().Create(c).Error; err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.SuccessCount++
		seen = append(seen, c)
	}

	if result.SuccessCount > 0 {
		l.contacts.invalidate()
	}
	result.Message = fmt.Sprintf("Successfully imported %d contacts", result.SuccessCount)
	logger.Info("联系人导入完成",
		zap.Int("success", result.SuccessCount),
		zap.Int("errors", result.ErrorCount),
		zap.Int("skipped", result.SkippedCount),
	)
	return result, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, types.NewAppErrorWithCause(types.ErrCodeCSVMalformed, "Unable to read CSV file", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, types.NewAppErrorWithCause(types.ErrCodeCSVMalformed, "Unable to read Excel file", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, types.NewAppErrorWithCause(types.ErrCodeCSVMalformed, "Unable to read Excel file", err)
	}
	return rows, nil
}

// columnIndex 表头按去空白、不区分大小写匹配
func columnIndex(header []string) (map[string]int, []string) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}
	var missing []string
	for _, col := range importColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	return index, missing
}

func rowContact(row []string, index map[string]int) *model.Contact {
	get := func(col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	return &model.Contact{
		Name:        get("name"),
		Designation: get("designation"),
		Company:     get("company"),
		Phone:       classify.JoinList(classify.SplitList(get("phone"))),
		Email:       classify.JoinList(classify.SplitList(get("email"))),
		Website:     classify.JoinList(classify.SplitList(get("website"))),
		Address:     get("address"),
	}
}

// isImportDuplicate 姓名与公司都相同，或邮箱非空且相同
func isImportDuplicate(c *model.Contact, existing []*model.Contact) bool {
	for _, e := range existing {
		if c.Name == e.Name && c.Company == e.Company {
			return true
		}
		if c.Email != "" && c.Email == e.Email {
			return true
		}
	}
	return false
}
