package config

const (
	EnvPrefix = "HOMEPLATE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                = "HOMEPLATE_APP_ENV"
	EnvPort                  = "HOMEPLATE_APP_PORT"
	EnvRedisURL              = "HOMEPLATE_REDIS_URL"
	EnvContentBaseURL        = "HOMEPLATE_CONTENT_BASE_URL"
	EnvContentServiceToken   = "HOMEPLATE_CONTENT_SERVICE_TOKEN"
	EnvContentJWTSecret      = "HOMEPLATE_CONTENT_JWT_SECRET"
	EnvTaxRatePercent        = "HOMEPLATE_TAX_RATE_PERCENT"
	EnvShippingFee           = "HOMEPLATE_SHIPPING_FEE"
	EnvFreeShippingThreshold = "HOMEPLATE_FREE_SHIPPING_THRESHOLD"
)
