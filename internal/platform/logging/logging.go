// Package logging はアプリケーション全体で使う zap ロガーを構築します。
package logging

import (
	"fmt"

	"github.com/ogurasousui/company-sites/internal/platform/config"
	"go.uber.org/zap"
)

// New は設定に従って zap.Logger を生成します。
//
// development が false の場合は JSON 出力で、DPanic レベルのログでも panic しません。
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: parse level %q: %w", cfg.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}

	return logger.With(zap.String("service", "company-sites")), nil
}
