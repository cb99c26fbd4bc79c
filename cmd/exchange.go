package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cardscan/common/utils"
	"cardscan/internal/logic"

	"github.com/spf13/cobra"
)

var (
	importSkipDuplicates bool
	exportFormat         string
	exportOut            string
	templateOut          string
)

// importCmd 从 CSV/Excel 导入联系人
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "从 CSV 或 Excel 文件导入联系人",
	Example: `  cardscan import contacts.csv
  cardscan import contacts.xlsx --skip-duplicates=false`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// exportCmd 导出联系人
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "导出全部联系人",
	Example: `  cardscan export --format csv
  cardscan export --format excel --out contacts.xlsx`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

// templateCmd 输出导入模板
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "输出 CSV 导入模板",
	Args:  cobra.NoArgs,
	RunE:  runTemplate,
}

func init() {
	rootCmd.AddCommand(importCmd, exportCmd, templateCmd)

	importCmd.Flags().BoolVar(&importSkipDuplicates, "skip-duplicates", true, "跳过已存在的联系人")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", logic.FormatCSV, "导出格式 (csv, excel)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "输出文件，默认按时间生成文件名，- 表示标准输出")
	templateCmd.Flags().StringVarP(&templateOut, "out", "o", "-", "输出文件，- 表示标准输出")
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	format := logic.FormatCSV
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
	case ".xlsx":
		format = logic.FormatExcel
	default:
		return fmt.Errorf("不支持的文件类型: %s", path)
	}

	ctx := commandContext(cmd)
	_, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	result, err := logic.NewExchangeLogic(ctx).Import(f, format, importSkipDuplicates)
	if result != nil {
		s, jsonErr := utils.ToJSONPretty(result)
		if jsonErr != nil {
			return jsonErr
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
	}
	return err
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, err := logic.NormalizeFormat(exportFormat)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	_, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	out := exportOut
	if out == "" {
		out = logic.ExportFileName(format, time.Now())
	}
	return writeOutput(cmd, out, func(w io.Writer) error {
		return logic.NewExchangeLogic(ctx).Export(w, format)
	})
}

func runTemplate(cmd *cobra.Command, _ []string) error {
	return writeOutput(cmd, templateOut, func(w io.Writer) error {
		_, err := w.Write(logic.Template())
		return err
	})
}

// writeOutput 写入文件或标准输出，写入失败时删除不完整的文件
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "已写入 %s\n", path)
	return nil
}
