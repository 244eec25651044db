package domain

// Config carries the runtime settings the handlers and usecases read.
type Config struct {
	ListenAddr         string `yaml:"listenAddr"`
	GatewayBase        string `yaml:"gatewayBase"`
	AssetUnitName      string `yaml:"assetUnitName"`
	ConfirmationRounds uint64 `yaml:"confirmationRounds"`
	MaxUploadBytes     int64  `yaml:"maxUploadBytes"`
}
