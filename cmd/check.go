package cmd

import (
	"fmt"

	"cardscan/internal/logic"

	"github.com/spf13/cobra"
)

// checkCmd 检查运行环境
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "检查 OCR 引擎、数据库、临时目录和缓存是否可用",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := commandContext(cmd)
		_, cleanup, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		result := logic.NewSystemLogic(ctx).Test()
		w := cmd.OutOrStdout()
		for _, c := range result.Components {
			mark := "OK"
			if !c.OK {
				mark = "FAIL"
			}
			fmt.Fprintf(w, "%-10s %-4s %s\n", c.Name, mark, c.Message)
		}
		if !result.OK {
			return fmt.Errorf("环境检查未通过")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
