package logic

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"cardscan/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNormalizeFormat(t *testing.T) {
	for in, want := range map[string]string{"": FormatCSV, "CSV": FormatCSV, "excel": FormatExcel, " xlsx ": FormatExcel} {
		got, err := NormalizeFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := NormalizeFormat("pdf")
	assert.Equal(t, types.ErrCodeInvalidParameter, types.GetErrorCode(err))
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	assert.Equal(t, "contacts_export_20240309_140507.csv", ExportFileName(FormatCSV, now))
	assert.Equal(t, "contacts_export_20240309_140507.xlsx", ExportFileName(FormatExcel, now))
}

func TestTemplate(t *testing.T) {
	records, err := csv.NewReader(bytes.NewReader(Template())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, importColumns, records[0])
	assert.Equal(t, "John Doe", records[1][0])
	assert.Equal(t, "456 Oak Ave, Town, State 67890", records[2][6])
}

func TestExport_Empty(t *testing.T) {
	setupStore(t)
	var buf bytes.Buffer
	err := NewExchangeLogic(context.Background()).ExportCSV(&buf)
	assert.ErrorIs(t, err, types.ErrExportEmpty)
	err = NewExchangeLogic(context.Background()).ExportExcel(&buf)
	assert.ErrorIs(t, err, types.ErrExportEmpty)
}

func TestExportCSV(t *testing.T) {
	setupStore(t)
	mustCreate(t, &types.CreateContactRequest{Name: "First", Phone: []string{"555-123-4567", "555-765-4321"}})
	second := mustCreate(t, &types.CreateContactRequest{Name: "Second", Company: "Acme, Inc."})

	var buf bytes.Buffer
	require.NoError(t, NewExchangeLogic(context.Background()).ExportCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, exportColumns, records[0])
	// 最新的在前
	assert.Equal(t, "Second", records[1][1])
	assert.Equal(t, "Acme, Inc.", records[1][3])
	assert.Equal(t, second.CreatedAt.String(), records[1][8])
	assert.Equal(t, "555-123-4567, 555-765-4321", records[2][4])
}

func TestExportExcel(t *testing.T) {
	setupStore(t)
	mustCreate(t, &types.CreateContactRequest{Name: "Jane Doe", Email: []string{"jane@acme.io"}})

	var buf bytes.Buffer
	require.NoError(t, NewExchangeLogic(context.Background()).ExportExcel(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ExportSheet}, f.GetSheetList())
	rows, err := f.GetRows(ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportColumns, rows[0])
	assert.Equal(t, "Jane Doe", rows[1][1])
	assert.Equal(t, "jane@acme.io", rows[1][5])

	styleID, err := f.GetCellStyle(ExportSheet, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)

	panes, err := f.GetPanes(ExportSheet)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
}

const importCSV = `Name, Designation ,Company,Phone,Email,Website,Address
John Doe,Software Engineer,Tech Corp,(555) 123-4567,john@techcorp.com,www.techcorp.com,"123 Main St, City"
,,,555-000-0000,,,
Jane Smith,Marketing Manager,Marketing Inc,"(555) 987-6543,555-111-2222",jane@marketing.com,,
John Doe,Other Title,Tech Corp,,,,
Copycat,,Elsewhere,,jane@marketing.com,,
`

func TestImport_CSV(t *testing.T) {
	setupStore(t)
	l := NewExchangeLogic(context.Background())

	res, err := l.Import(strings.NewReader(importCSV), FormatCSV, true)
	require.NoError(t, err)
	assert.Equal(t, 5, res.TotalCount)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 3, res.SkippedCount)
	assert.Zero(t, res.ErrorCount)
	assert.Equal(t, "Successfully imported 2 contacts", res.Message)

	all, err := NewContactLogic(context.Background()).All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	byName := map[string]string{}
	for _, c := range all {
		byName[c.Name] = c.Phone
	}
	assert.Equal(t, "(555) 987-6543, 555-111-2222", byName["Jane Smith"])

	// 再次导入全部跳过
	res, err = l.Import(strings.NewReader(importCSV), FormatCSV, true)
	require.NoError(t, err)
	assert.Zero(t, res.SuccessCount)
	assert.Equal(t, 5, res.SkippedCount)
}

func TestImport_WithoutSkip(t *testing.T) {
	setupStore(t)
	res, err := NewExchangeLogic(context.Background()).Import(strings.NewReader(importCSV), FormatCSV, false)
	require.NoError(t, err)
	assert.Equal(t, 4, res.SuccessCount)
	assert.Equal(t, 1, res.SkippedCount)
}

func TestImport_MissingColumns(t *testing.T) {
	setupStore(t)
	res, err := NewExchangeLogic(context.Background()).Import(strings.NewReader("name,company\nA,B\n"), FormatCSV, true)
	assert.Equal(t, types.ErrCodeCSVMalformed, types.GetErrorCode(err))
	require.NotNil(t, res)
	assert.Equal(t, []string{"Missing required columns: designation, phone, email, website, address"}, res.Errors)
	assert.Equal(t, 1, res.TotalCount)
	assert.Zero(t, res.SuccessCount)
}

func TestImport_Empty(t *testing.T) {
	setupStore(t)
	for _, data := range []string{"", "name,designation,company,phone,email,website,address\n"} {
		res, err := NewExchangeLogic(context.Background()).Import(strings.NewReader(data), FormatCSV, true)
		require.NoError(t, err)
		assert.Equal(t, "CSV file is empty", res.Message)
		assert.Zero(t, res.TotalCount)
	}
}

func TestImport_EmptyExcel(t *testing.T) {
	setupStore(t)
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow(f.GetSheetName(0), "A1", &[]string{"name", "designation", "company", "phone", "email", "website", "address"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	res, err := NewExchangeLogic(context.Background()).Import(&buf, FormatXLSX, true)
	require.NoError(t, err)
	assert.Equal(t, "Excel file is empty", res.Message)
}

func TestImport_FieldTooLong(t *testing.T) {
	setupStore(t)
	data := "name,designation,company,phone,email,website,address\n" +
		strings.Repeat("x", 101) + ",,Acme Corp,,,,\n" +
		"Jane Doe,,Acme Corp,,,,\n"

	res, err := NewExchangeLogic(context.Background()).Import(strings.NewReader(data), FormatCSV, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 1, res.ErrorCount)
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.HasPrefix(res.Errors[0], "Row 1: "))
	assert.Contains(t, res.Errors[0], "name exceeds 100 characters")
}

func TestImport_Malformed(t *testing.T) {
	setupStore(t)
	_, err := NewExchangeLogic(context.Background()).Import(strings.NewReader("name,\"broken\nx"), FormatCSV, true)
	assert.Equal(t, types.ErrCodeCSVMalformed, types.GetErrorCode(err))

	_, err = NewExchangeLogic(context.Background()).Import(strings.NewReader("not a zip"), FormatXLSX, true)
	assert.Equal(t, types.ErrCodeCSVMalformed, types.GetErrorCode(err))
}

func TestImport_BOMHeader(t *testing.T) {
	setupStore(t)
	data := "\ufeffname,designation,company,phone,email,website,address\nA,,B,,,,\n"
	res, err := NewExchangeLogic(context.Background()).Import(strings.NewReader(data), FormatCSV, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
}

// 导出再导入，七个字段保持一致
func TestExportImport_RoundTrip(t *testing.T) {
	req := &types.CreateContactRequest{
		Name:        "John Smith",
		Designation: "Senior Software Engineer",
		Company:     "Tech Solutions Inc.",
		Phone:       []string{"(555) 123-4567", "+1 555-987-6543"},
		Email:       []string{"john.smith@techsolutions.com"},
		Website:     []string{"www.techsolutions.com"},
		Address:     "123 Main Street, Suite 100, New York, NY 10001",
	}

	for _, format := range []string{FormatCSV, FormatExcel} {
		t.Run(format, func(t *testing.T) {
			setupStore(t)
			orig := mustCreate(t, req)
			var buf bytes.Buffer
			require.NoError(t, NewExchangeLogic(context.Background()).Export(&buf, format))

			setupStore(t)
			res, err := NewExchangeLogic(context.Background()).Import(&buf, format, true)
			require.NoError(t, err)
			require.Equal(t, 1, res.SuccessCount)

			all, err := NewContactLogic(context.Background()).All()
			require.NoError(t, err)
			require.Len(t, all, 1)
			got := types.ToContactInfo(all[0])
			assert.Equal(t, orig.Name, got.Name)
			assert.Equal(t, orig.Designation, got.Designation)
			assert.Equal(t, orig.Company, got.Company)
			assert.Equal(t, orig.Phone, got.Phone)
			assert.Equal(t, orig.Email, got.Email)
			assert.Equal(t, orig.Website, got.Website)
			assert.Equal(t, orig.Address, got.Address)
		})
	}
}
