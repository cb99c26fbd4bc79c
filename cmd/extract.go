package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"cardscan/common/logger"
	"cardscan/common/utils"
	"cardscan/internal/logic"
	"cardscan/internal/pipeline"
	"cardscan/internal/svc"
	"cardscan/internal/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var extractSave bool

// extractResult 命令行识别结果
type extractResult struct {
	Results []pipeline.CardResult `json:"results"`
	Summary pipeline.Summary      `json:"summary"`
	Saved   []*types.ContactInfo  `json:"saved,omitempty"`
}

// extractCmd 识别本地名片图片
var extractCmd = &cobra.Command{
	Use:   "extract <image>...",
	Short: "识别名片图片并输出 JSON",
	Long:  `对一张或多张本地图片执行预处理、文字识别和字段归类，结果以 JSON 输出到标准输出。`,
	Example: `  cardscan extract card.jpg
  cardscan extract front.png back.png --save`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "识别成功的名片保存为联系人")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	_, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	cards := make([]pipeline.Card, len(args))
	for i, path := range args {
		// 读取失败的文件保留空数据，由流水线记为失败
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("读取图片失败", zap.String("path", path), zap.Error(err))
		}
		cards[i] = pipeline.Card{Source: pipeline.SourceFile, Filename: filepath.Base(path), Data: data}
	}

	results, summary := svc.Ctx.Pipeline.ProcessAll(ctx, cards)
	out := extractResult{Results: results, Summary: summary}

	if extractSave {
		contacts := logic.NewContactLogic(ctx)
		for _, r := range results {
			if !r.OK() {
				continue
			}
			info, err := contacts.Create(types.FromFields(*r.Fields))
			if err != nil {
				logger.Warn("保存联系人失败", zap.String("filename", r.Filename), zap.Error(err))
				continue
			}
			out.Saved = append(out.Saved, info)
		}
	}

	s, err := utils.ToJSONPretty(out)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), s)

	if summary.Succeeded == 0 {
		return fmt.Errorf("%d 张名片全部识别失败", summary.Total)
	}
	return nil
}
