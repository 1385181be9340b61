package app

import (
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/phenrril/easyphone/internal/adapters/httpserver"
	"github.com/phenrril/easyphone/internal/adapters/repo/postgres"
	"github.com/phenrril/easyphone/internal/adapters/shipping/superfrete"
	"github.com/phenrril/easyphone/internal/config"
	"github.com/phenrril/easyphone/internal/domain"
	"github.com/phenrril/easyphone/internal/usecase"
)

type App struct {
	DB          *gorm.DB
	Cfg         config.Config
	ProductUC   *usecase.ProductUC
	OrderUC     *usecase.OrderUC
	SettingsUC  *usecase.SettingsUC
	Rates       domain.RateService
	OAuthConfig *oauth2.Config
}

func NewApp(db *gorm.DB, cfg config.Config) (*App, error) {
	prodRepo := postgres.NewProductRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	settingsRepo := postgres.NewSettingsRepo(db)

	var oauthCfg *oauth2.Config
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.BaseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	a := &App{DB: db, Cfg: cfg, OAuthConfig: oauthCfg}
	a.ProductUC = &usecase.ProductUC{Products: prodRepo}
	a.OrderUC = &usecase.OrderUC{Orders: orderRepo}
	a.SettingsUC = &usecase.SettingsUC{Settings: settingsRepo}
	a.Rates = superfrete.New(cfg.SuperfreteToken, cfg.OriginCEP)
	return a, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.ProductUC, a.OrderUC, a.SettingsUC, a.Rates, a.Cfg, a.OAuthConfig)
}

func (a *App) MigrateAndSeed() error {
	if err := a.DB.AutoMigrate(
		&domain.Product{}, &domain.Variant{}, &domain.Image{},
		&domain.Order{}, &domain.OrderItem{},
		&domain.StoreSettings{}, &domain.Coupon{},
	); err != nil {
		return err
	}

	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_orders_time_stamp ON orders(time_stamp)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_variants_product_id ON variants(product_id)").Error
	_ = a.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_coupons_code_unique ON coupons(code)").Error

	var count int64
	if err := a.DB.Model(&domain.StoreSettings{}).Count(&count).Error; err == nil && count == 0 {
		seedSettings(a.DB)
	}
	return nil
}

func seedSettings(db *gorm.DB) {
	db.Create(&domain.StoreSettings{
		ID:          uuid.New(),
		Title:       "Easy Phone",
		Description: "Celulares e acessórios",
		Email:       "contato@easyphone.com.br",
	})
}
