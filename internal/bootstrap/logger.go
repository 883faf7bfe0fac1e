package bootstrap

import "go.uber.org/zap"

// NewLogger returns a production JSON logger outside development and installs
// it as the zap global.
func NewLogger(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger.With(zap.String("service", "masar-finance")))
	return zap.L(), nil
}
