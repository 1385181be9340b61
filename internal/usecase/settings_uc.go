package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/phenrril/easyphone/internal/domain"
)

type SettingsUC struct {
	Settings domain.SettingsRepo
}

func (uc *SettingsUC) Get(ctx context.Context) (*domain.StoreSettings, error) {
	s, err := uc.Settings.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.StoreSettings{}, nil
	}
	return s, err
}

func (uc *SettingsUC) Update(ctx context.Context, s *domain.StoreSettings) error {
	if s == nil {
		return errors.New("settings nil")
	}
	if s.ID == uuid.Nil {
		if cur, err := uc.Settings.Get(ctx); err == nil {
			s.ID = cur.ID
		} else {
			s.ID = uuid.New()
		}
	}
	return uc.Settings.Save(ctx, s)
}

func (uc *SettingsUC) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	return uc.Settings.ListCoupons(ctx)
}

// AddCoupon normaliza el código a mayúsculas y valida el porcentaje. El
// checkout todavía no aplica cupones; esto es sólo el ABM del dashboard.
func (uc *SettingsUC) AddCoupon(ctx context.Context, code string, percent int) (*domain.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.ErrInvalidCoupon
	}
	if percent <= 0 || percent > 100 {
		return nil, domain.ErrInvalidCoupon
	}
	c := &domain.Coupon{ID: uuid.New(), Code: code, Percent: percent, Active: true}
	if err := uc.Settings.SaveCoupon(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *SettingsUC) RemoveCoupon(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.ErrNotFound
	}
	return uc.Settings.DeleteCoupon(ctx, id)
}
