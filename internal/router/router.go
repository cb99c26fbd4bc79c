package router

import (
	"time"

	commonMiddleware "cardscan/common/middleware"
	"cardscan/internal/config"
	"cardscan/internal/handler"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

// NewApp 创建 Fiber 应用并注册路由
func NewApp(cfg *config.Config) *fiber.App {
	bodyLimit := cfg.Server.BodyLimit << 20
	if bodyLimit <= 0 {
		bodyLimit = fiber.DefaultBodyLimit
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    bodyLimit,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: handler.ErrorHandler,
	})
	Setup(app)
	return app
}

// Setup 设置路由
func Setup(app *fiber.App) {
	// 全局中间件
	app.Use(commonMiddleware.CORS(), commonMiddleware.RequestID(), commonMiddleware.Logger(), commonMiddleware.Recover())

	app.Get("/health", handler.Health)

	api := app.Group("/api")

	// 名片识别
	api.Post("/cards/extract", handler.CardExtract)

	// 联系人
	ct := api.Group("/contacts")
	ct.Post("", handler.ContactCreate)
	ct.Post("/list", handler.ContactList)
	ct.Post("/duplicates", handler.ContactDuplicates)
	ct.Post("/merge", handler.ContactMerge)
	ct.Get("/export", handler.ContactExport)
	ct.Post("/import", handler.ContactImport)
	ct.Get("/template", handler.ContactTemplate)
	ct.Get("/:id", handler.ContactGet)
	ct.Put("", handler.ContactUpdate)
	ct.Delete("/:id", handler.ContactDelete)

	// 系统
	api.Get("/system/test", handler.SystemTest)
}
