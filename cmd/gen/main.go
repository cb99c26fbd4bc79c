package main

import (
	"fmt"

	"cardscan/common/database"
	"cardscan/internal/config"
	"cardscan/internal/model"

	"gorm.io/gen"
)

// 用于从模型生成类型安全的查询代码
// 使用方法: go run ./cmd/gen

func main() {
	// 加载配置文件
	cfg, err := config.LoadConfig("config/config.yml")
	if err != nil {
		panic(fmt.Errorf("加载配置文件失败: %w", err))
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		panic(fmt.Errorf("连接数据库失败: %w", err))
	}

	// 创建gen配置
	g := gen.NewGenerator(gen.Config{
		OutPath:           "./internal/query",
		ModelPkgPath:      "./internal/model",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})

	g.UseDB(db)

	// 联系人模型由 internal/model 维护，这里只生成查询代码
	g.ApplyBasic(model.Contact{})

	g.Execute()

	fmt.Println("代码生成完成!")
}
